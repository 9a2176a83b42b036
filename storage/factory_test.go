package storage

import (
	"errors"
	"testing"

	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/model"
)

func TestNewRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"s3 without bucket", Config{Kind: StorageProviderS3}, "s3 bucket"},
		{"s3 with invalid uri", Config{Kind: StorageProviderS3, S3BucketURI: "gs://other"}, "s3 bucket"},
		{"gcs without bucket", Config{Kind: StorageProviderGCS, GCSToken: "tok"}, "gcs bucket"},
		{"gcs without bucket nor token", Config{Kind: StorageProviderGCS}, "gcs bucket"},
		{"gcs without token nor auto auth", Config{Kind: StorageProviderGCS, GCSBucket: "b"}, "gcs token"},
		{"unknown provider", Config{Kind: "ftp"}, "provider"},
		{"empty provider", Config{}, "provider"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			up, err := New(tc.cfg)
			if up != nil {
				t.Errorf("expected no provider got %T", up)
			}
			if !errors.Is(err, ErrConfigMissing) {
				t.Fatalf("expected ErrConfigMissing got %v", err)
			}

			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a *ConfigError got %T", err)
			} else if ce.Field != tc.field {
				t.Errorf("expected missing field %q got %q", tc.field, ce.Field)
			}
		})
	}
}

func TestNewBuildsVariants(t *testing.T) {
	defer ResetSessions()

	up, err := New(Config{Kind: StorageProviderGCS, GCSBucket: "b", AutoAuth: true})
	if err != nil {
		t.Fatal(err)
	} else if _, ok := up.(*GCS); !ok {
		t.Errorf("expected *GCS got %T", up)
	}

	up, err = New(Config{Kind: "GCS", GCSBucket: "b", GCSToken: "static"})
	if err != nil {
		t.Fatal(err)
	} else if _, ok := up.(*GCS); !ok {
		t.Errorf("expected *GCS got %T", up)
	}

	up, err = New(Config{Kind: StorageProviderS3, S3BucketURI: "s3://my-bucket", AWSRegion: "ca-central-1"})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := up.(*S3)
	if !ok {
		t.Fatalf("expected *S3 got %T", up)
	} else if s.bucket != "my-bucket" {
		t.Errorf("expected bucket my-bucket got %s", s.bucket)
	}
}

func TestS3SessionIsShared(t *testing.T) {
	ResetSessions()
	defer ResetSessions()

	cfg := Config{Kind: StorageProviderS3, S3BucketURI: "s3://one", AWSRegion: "ca-central-1"}
	a, err := newS3(cfg)
	if err != nil {
		t.Fatal(err)
	}

	cfg.S3BucketURI = "s3://two"
	b, err := newS3(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if a.svc.Client.Config.Credentials != b.svc.Client.Config.Credentials {
		t.Error("expected both providers to share the same session")
	}
	if len(sessions) != 1 {
		t.Errorf("expected one session got %d", len(sessions))
	}

	cfg.AWSRegion = "us-west-2"
	if _, err := newS3(cfg); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected a second session for another region got %d", len(sessions))
	}
}

func TestParseBucketURI(t *testing.T) {
	tables := map[string]string{
		"s3://bucket":        "bucket",
		"s3://bucket/prefix": "bucket",
		"bare-bucket":        "bare-bucket",
	}

	for uri, expected := range tables {
		b, err := ParseBucketURI(uri)
		if err != nil {
			t.Errorf("%s: %v", uri, err)
		} else if b != expected {
			t.Errorf("%s: expected %s got %s", uri, expected, b)
		}
	}

	if _, err := ParseBucketURI("https://bucket"); err == nil {
		t.Error("expected an error for a non s3 scheme")
	}
}

func TestConfigFromSettings(t *testing.T) {
	s := model.Settings{
		Provider:  "gcs",
		GCSBucket: " pics ",
		CDNURL:    "https://cdn.example.com/",
		AutoAuth:  true,
	}
	app := config.AppConfig{AWSRegion: "eu-west-1"}

	cfg := ConfigFromSettings(s, app)
	if cfg.Kind != StorageProviderGCS || cfg.GCSBucket != "pics" || !cfg.AutoAuth {
		t.Errorf("unexpected config %+v", cfg)
	} else if cfg.AWSRegion != "eu-west-1" {
		t.Errorf("expected region from app config got %s", cfg.AWSRegion)
	}
}
