package model

// Settings is the user facing configuration persisted by the host.
type Settings struct {
	// Provider is the active upload backend, "s3" or "gcs"
	Provider string `json:"provider"`

	// S3BucketURI bucket of the managed store, i.e. s3://my-bucket
	S3BucketURI string `json:"s3BucketUri"`

	// GCSBucket bare bucket name for the raw HTTP provider
	GCSBucket string `json:"gcsBucket"`
	// GCSToken static bearer token, ignored when AutoAuth is on
	GCSToken string `json:"gcsToken"`
	// CDNURL optional base URL returned links are rewritten to
	CDNURL string `json:"cdnUrl"`
	// AutoAuth acquires a token from gcloud on every upload
	AutoAuth bool `json:"autoAuth"`

	// FixedSize display width in the inserted reference, 0 disables it
	FixedSize int `json:"fixedSize"`
	// MaxWidth down-scales wider images before upload, 0 disables it
	MaxWidth int `json:"maxWidth"`
}

// DefaultSettings returns the values used for any field absent from a
// persisted settings object.
func DefaultSettings() Settings {
	return Settings{
		Provider: "s3",
		AutoAuth: true,
	}
}
