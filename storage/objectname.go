package storage

import (
	"fmt"
	"path"
	"time"

	"github.com/staticbackendhq/imgpaste/internal"
)

const (
	// ObjectPrefix keeps pasted images apart from anything else in the bucket
	ObjectPrefix = "pasted-images"

	defaultExt     = "png"
	defaultMime    = "image/png"
	randomTokenLen = 6
)

// NewObjectName returns image_<millis>_<token>.<ext> for the original file
// name. The extension falls back to png.
func NewObjectName(original string, now time.Time) string {
	ext := internal.CleanUpExt(original)
	if len(ext) == 0 {
		ext = defaultExt
	}

	return fmt.Sprintf("image_%d_%s.%s",
		now.UnixMilli(),
		internal.RandStringRunes(randomTokenLen),
		ext,
	)
}

// ObjectPath is the full key of an object name inside the bucket.
func ObjectPath(name string) string {
	return path.Join(ObjectPrefix, name)
}

func mimeOrDefault(mimeType string) string {
	if len(mimeType) == 0 {
		return defaultMime
	}
	return mimeType
}
