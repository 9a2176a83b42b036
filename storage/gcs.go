package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/staticbackendhq/imgpaste/model"
	"golang.org/x/oauth2"
)

// GCSHost serves both the JSON upload API and public object URLs.
const GCSHost = "https://storage.googleapis.com"

// GCS uploads with a single authenticated POST against the Cloud Storage
// JSON API.
type GCS struct {
	bucket   string
	token    string
	cdnURL   string
	autoAuth bool

	locator *Locator

	// Endpoint and Client are exported for tests
	Endpoint string
	Client   *http.Client
}

func newGCS(cfg Config) *GCS {
	locator := cfg.Locator
	if locator == nil {
		locator = NewLocator(cfg.Log)
	}

	return &GCS{
		bucket:   cfg.GCSBucket,
		token:    cfg.GCSToken,
		cdnURL:   cfg.CDNURL,
		autoAuth: cfg.AutoAuth,
		locator:  locator,
		Endpoint: GCSHost,
		// no timeout, the upload lasts as long as the transport allows
		Client: &http.Client{},
	}
}

func (g *GCS) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if g.autoAuth {
		return g.locator.TokenSource(ctx), nil
	}

	if len(g.token) == 0 {
		return nil, ErrAuth
	}

	// a static token is never checked for expiry, the store will say so
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: g.token, TokenType: "Bearer"}), nil
}

// Upload posts data under ObjectPrefix and returns the public or CDN URL.
func (g *GCS) Upload(ctx context.Context, data model.UploadFileData) (string, error) {
	ts, err := g.tokenSource(ctx)
	if err != nil {
		return "", err
	}

	tok, err := ts.Token()
	if err != nil {
		return "", err
	}

	objectPath := ObjectPath(NewObjectName(data.Name, time.Now()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.uploadURL(objectPath), bytes.NewReader(data.Data))
	if err != nil {
		return "", &UploadError{Err: err}
	}

	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", mimeOrDefault(data.MimeType))

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", &UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &UploadError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	// drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	return g.publicURL(objectPath), nil
}

// uploadURL escapes the bucket as a path segment and the object path as a
// query value.
func (g *GCS) uploadURL(objectPath string) string {
	return fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		g.Endpoint,
		url.PathEscape(g.bucket),
		url.QueryEscape(objectPath),
	)
}

// publicURL does not check that the CDN actually serves the object.
func (g *GCS) publicURL(objectPath string) string {
	if len(g.cdnURL) > 0 {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(g.cdnURL, "/"), objectPath)
	}
	return fmt.Sprintf("%s/%s/%s", GCSHost, g.bucket, objectPath)
}
