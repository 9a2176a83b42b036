package storage

import (
	"context"

	"github.com/staticbackendhq/imgpaste/model"
)

const (
	// StorageProviderS3 uploads through the managed AWS SDK
	StorageProviderS3 = "s3"
	// StorageProviderGCS uploads with raw authenticated HTTP requests
	StorageProviderGCS = "gcs"
)

// Uploader stores an image and returns the URL it can be fetched from.
// Implementations are *S3 and *GCS, built by New.
type Uploader interface {
	Upload(ctx context.Context, data model.UploadFileData) (string, error)
}
