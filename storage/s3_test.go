package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/staticbackendhq/imgpaste/model"
)

func newFakeS3(t *testing.T, status int, gotPath, gotACL *string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		*gotPath = r.URL.Path
		*gotACL = r.Header.Get("X-Amz-Acl")

		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestS3(t *testing.T, endpoint string) *S3 {
	t.Helper()

	s, err := newS3(Config{
		Kind:               StorageProviderS3,
		S3BucketURI:        "s3://unit-test",
		AWSRegion:          "ca-central-1",
		AWSEndpoint:        endpoint,
		AWSAccessKeyID:     "key",
		AWSSecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestS3Upload(t *testing.T) {
	defer ResetSessions()

	var path, acl string
	ts := newFakeS3(t, http.StatusOK, &path, &acl)

	s := newTestS3(t, ts.URL)

	url, err := s.Upload(context.Background(), model.UploadFileData{
		Name:     "capture.png",
		MimeType: "image/png",
		Data:     []byte("png-bytes"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(path, "/unit-test/"+ObjectPrefix+"/image_") {
		t.Errorf("unexpected object path %s", path)
	} else if acl != "public-read" {
		t.Errorf("expected public-read ACL got %q", acl)
	}

	expected := ts.URL + path
	if url != expected {
		t.Errorf("expected %s got %s", expected, url)
	}
}

func TestS3UploadFailure(t *testing.T) {
	defer ResetSessions()

	var path, acl string
	ts := newFakeS3(t, http.StatusForbidden, &path, &acl)

	s := newTestS3(t, ts.URL)

	_, err := s.Upload(context.Background(), model.UploadFileData{Data: []byte("x")})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed got %v", err)
	}
}
