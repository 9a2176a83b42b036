// Package settings persists the user settings object and merges what it
// loads over model.DefaultSettings.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/staticbackendhq/imgpaste/cache"
	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
)

// CacheKey is where CacheStore keeps the settings document.
const CacheKey = "imgpaste:settings"

// Store loads and saves the settings object verbatim.
type Store interface {
	Load(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

// New returns the store selected by cfg.SettingsStore.
func New(cfg config.AppConfig, log *logger.Logger) Store {
	switch strings.ToLower(cfg.SettingsStore) {
	case config.SettingsStoreRedis:
		return CacheStore{Cache: cache.NewCache(log)}
	case config.SettingsStoreMem:
		return CacheStore{Cache: cache.NewDevCache()}
	}
	return FileStore{Path: cfg.SettingsPath}
}

// decode overlays raw on the defaults, absent fields keep their default.
func decode(raw []byte) (model.Settings, error) {
	s := model.DefaultSettings()
	if len(raw) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		return model.DefaultSettings(), fmt.Errorf("invalid settings document: %w", err)
	}
	return s, nil
}

// FileStore keeps the settings in a JSON file.
type FileStore struct {
	Path string
}

func (f FileStore) Load(ctx context.Context) (model.Settings, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return model.DefaultSettings(), nil
	} else if err != nil {
		return model.DefaultSettings(), err
	}

	return decode(b)
}

func (f FileStore) Save(ctx context.Context, s model.Settings) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// write then rename so a crash never leaves half a document
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// CacheStore keeps the settings in a cache.Volatilizer (Redis or memory).
type CacheStore struct {
	Cache cache.Volatilizer
}

// Load decodes the stored document over the defaults.
func (c CacheStore) Load(ctx context.Context) (model.Settings, error) {
	s := model.DefaultSettings()

	err := c.Cache.GetTyped(CacheKey, &s)
	if errors.Is(err, cache.ErrNotFound) {
		return model.DefaultSettings(), nil
	} else if err != nil {
		return model.DefaultSettings(), fmt.Errorf("unable to load settings: %w", err)
	}
	return s, nil
}

func (c CacheStore) Save(ctx context.Context, s model.Settings) error {
	return c.Cache.SetTyped(CacheKey, s)
}
