package storage

import (
	"strings"

	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
)

// Config selects and configures one upload provider.
type Config struct {
	Kind string

	S3BucketURI        string
	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	GCSBucket string
	GCSToken  string
	CDNURL    string
	AutoAuth  bool

	// Locator overrides the gcloud lookup, NewLocator is used when nil
	Locator *Locator
	Log     *logger.Logger
}

// ConfigFromSettings maps the persisted settings and the process
// configuration to a provider Config.
func ConfigFromSettings(s model.Settings, app config.AppConfig) Config {
	return Config{
		Kind:               s.Provider,
		S3BucketURI:        strings.TrimSpace(s.S3BucketURI),
		AWSRegion:          app.AWSRegion,
		AWSEndpoint:        app.AWSEndpoint,
		AWSAccessKeyID:     app.AWSAccessKeyID,
		AWSSecretAccessKey: app.AWSSecretAccessKey,
		GCSBucket:          strings.TrimSpace(s.GCSBucket),
		GCSToken:           strings.TrimSpace(s.GCSToken),
		CDNURL:             strings.TrimSpace(s.CDNURL),
		AutoAuth:           s.AutoAuth,
	}
}

// New validates cfg and builds the provider it selects. A missing field is
// reported as a *ConfigError.
func New(cfg Config) (Uploader, error) {
	kind := strings.ToLower(cfg.Kind)

	if kind == StorageProviderS3 && len(cfg.S3BucketURI) == 0 {
		return nil, &ConfigError{Field: "s3 bucket"}
	}
	if kind == StorageProviderGCS && len(cfg.GCSBucket) == 0 {
		return nil, &ConfigError{Field: "gcs bucket"}
	}
	if kind == StorageProviderGCS && !cfg.AutoAuth && len(cfg.GCSToken) == 0 {
		return nil, &ConfigError{Field: "gcs token"}
	}

	switch kind {
	case StorageProviderS3:
		s, err := newS3(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StorageProviderGCS:
		return newGCS(cfg), nil
	}
	return nil, &ConfigError{Field: "provider"}
}

// FromSettings returns a constructor turning settings into providers, meant
// to be handed to the paste orchestrator.
func FromSettings(app config.AppConfig, log *logger.Logger) func(model.Settings) (Uploader, error) {
	return func(s model.Settings) (Uploader, error) {
		cfg := ConfigFromSettings(s, app)
		cfg.Log = log
		return New(cfg)
	}
}
