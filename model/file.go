package model

import (
	"strings"
	"time"
)

// UploadFileData is an image payload handed to an upload provider.
type UploadFileData struct {
	// Name is the original file name, used for the extension only
	Name string
	// MimeType declared by the clipboard, may be empty
	MimeType string
	Data     []byte
}

// IsImage reports whether a MIME type belongs to the image category.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// File is the outcome of a successful upload.
type File struct {
	URL      string    `json:"url"`
	Markdown string    `json:"markdown"`
	Size     int64     `json:"size"`
	Uploaded time.Time `json:"uploaded"`
}
