package cache

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found in cache")

// Volatilizer is a small key/value store shared by the host processes.
type Volatilizer interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	GetTyped(key string, v any) error
	SetTyped(key string, v any) error
}
