package cache

import (
	"encoding/json"
	"sync"
)

type CacheDev struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewDevCache() *CacheDev {
	return &CacheDev{data: make(map[string]string)}
}

func (d *CacheDev) Get(key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	val, ok := d.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (d *CacheDev) Set(key string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.data[key] = value
	return nil
}

func (d *CacheDev) GetTyped(key string, v any) error {
	val, err := d.Get(key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), v)
}

func (d *CacheDev) SetTyped(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return d.Set(key, string(b))
}
