package storage

import (
	"errors"
	"fmt"
)

var (
	ErrConfigMissing      = errors.New("missing configuration")
	ErrAuth               = errors.New("no access token available")
	ErrExecutableNotFound = errors.New("gcloud executable not found")
	ErrEmptyToken         = errors.New("gcloud returned an empty access token")
	ErrUploadFailed       = errors.New("upload failed")
)

// ConfigError names the configuration field New could not find.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s is required", e.Field)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigMissing
}

// UploadError is returned when the object store refused or never received
// the upload. Status is 0 for transport errors.
type UploadError struct {
	Status int
	Body   string
	Err    error
}

func (e *UploadError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("upload failed with status %d: %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("upload failed with status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return ErrUploadFailed.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}
