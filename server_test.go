package imgpaste

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/staticbackendhq/imgpaste/cache"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
	"github.com/staticbackendhq/imgpaste/paste"
	"github.com/staticbackendhq/imgpaste/settings"
	"github.com/staticbackendhq/imgpaste/storage"
)

type fakeUploader struct {
	err error
}

func (f fakeUploader) Upload(ctx context.Context, data model.UploadFileData) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/pasted-images/" + data.Name, nil
}

func newTestServer(t *testing.T, up storage.Uploader) (*httptest.Server, *paste.Orchestrator, settings.Store) {
	t.Helper()

	log := logger.Nop()
	store := settings.CacheStore{Cache: cache.NewDevCache()}

	o := paste.New(func(s model.Settings) (storage.Uploader, error) {
		if s.Provider != storage.StorageProviderS3 && s.Provider != storage.StorageProviderGCS {
			return nil, &storage.ConfigError{Field: "provider"}
		}
		return up, nil
	}, paste.LogNotifier{Log: log}, paste.AlwaysOnline{}, log)
	if err := o.Init(model.DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	o.Delay = time.Millisecond

	ts := httptest.NewServer(NewHandler(o, store, log))
	t.Cleanup(func() {
		ts.Close()
		o.Close()
	})
	return ts, o, store
}

func multipartBody(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}

	writer.Close()
	return buf, writer.FormDataContentType()
}

func TestUpload(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{})

	body, ct := multipartBody(t, "shot.png", "image/png", []byte("png"), nil)
	resp, err := http.Post(ts.URL+"/upload", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	var f model.File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}

	if f.URL != "https://cdn.example.com/pasted-images/shot.png" {
		t.Errorf("unexpected url %s", f.URL)
	} else if f.Markdown != "![]("+f.URL+")" {
		t.Errorf("unexpected markdown %s", f.Markdown)
	} else if f.Size != 3 {
		t.Errorf("expected size 3 got %d", f.Size)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{})

	body, ct := multipartBody(t, "notes.txt", "text/plain", []byte("hello"), nil)
	resp, err := http.Post(ts.URL+"/upload", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", resp.StatusCode)
	}
}

func TestUploadProviderError(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{err: &storage.UploadError{Status: 500}})

	body, ct := multipartBody(t, "shot.png", "image/png", []byte("png"), nil)
	resp, err := http.Post(ts.URL+"/upload", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 got %d", resp.StatusCode)
	}
}

func TestPasteEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{})

	fields := map[string]string{"document": "# Title\n\nend", "cursor": "9"}
	body, ct := multipartBody(t, "clip.png", "image/png", []byte("png"), fields)

	resp, err := http.Post(ts.URL+"/paste", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var res pasteResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}

	expected := "# Title\n\n![](https://cdn.example.com/pasted-images/clip.png)end"
	if !res.Handled {
		t.Error("expected the paste to be handled")
	} else if res.Document != expected {
		t.Errorf("expected %q got %q", expected, res.Document)
	}
}

func TestPasteEndpointFailureLeavesDocument(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{err: storage.ErrAuth})

	fields := map[string]string{"document": "unchanged"}
	body, ct := multipartBody(t, "clip.png", "image/png", []byte("png"), fields)

	resp, err := http.Post(ts.URL+"/paste", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var res pasteResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}

	if !res.Handled || res.Document != "unchanged" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSettingsSaveAndReload(t *testing.T) {
	ts, o, store := newTestServer(t, fakeUploader{})

	payload := `{"provider":"gcs","gcsBucket":"pics","fixedSize":40}`
	resp, err := http.Post(ts.URL+"/settings", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	saved, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	} else if saved.Provider != "gcs" || saved.FixedSize != 40 || !saved.AutoAuth {
		t.Errorf("unexpected saved settings %+v", saved)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, s := o.Active(); s.FixedSize == 40 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("provider was not reloaded")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err = http.Get(ts.URL + "/settings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got model.Settings
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	} else if got != saved {
		t.Errorf("expected %+v got %+v", saved, got)
	}
}

func TestStatusOf(t *testing.T) {
	tables := map[error]int{
		paste.ErrReadFailed:               http.StatusBadRequest,
		&storage.ConfigError{Field: "x"}:  http.StatusServiceUnavailable,
		storage.ErrAuth:                   http.StatusUnauthorized,
		storage.ErrExecutableNotFound:     http.StatusUnauthorized,
		storage.ErrEmptyToken:             http.StatusUnauthorized,
		&storage.UploadError{Status: 403}: http.StatusBadGateway,
	}

	for err, status := range tables {
		if s := statusOf(err); s != status {
			t.Errorf("%v: expected %d got %d", err, status, s)
		}
	}
}

func TestSettingsTokenRedacted(t *testing.T) {
	ts, _, store := newTestServer(t, fakeUploader{})

	post := func(payload string) model.Settings {
		resp, err := http.Post(ts.URL+"/settings", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var s model.Settings
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			t.Fatal(err)
		}
		return s
	}

	if s := post(`{"provider":"gcs","gcsBucket":"pics","gcsToken":"secret","autoAuth":false}`); s.GCSToken != redactedToken {
		t.Errorf("expected token redacted in the save response got %q", s.GCSToken)
	}

	resp, err := http.Get(ts.URL + "/settings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got model.Settings
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	} else if got.GCSToken != redactedToken {
		t.Errorf("expected token redacted got %q", got.GCSToken)
	}

	// the settings form posts back what it received
	got.FixedSize = 120
	b, _ := json.Marshal(got)
	post(string(b))

	saved, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	} else if saved.GCSToken != "secret" {
		t.Errorf("expected stored token kept got %q", saved.GCSToken)
	} else if saved.FixedSize != 120 {
		t.Errorf("expected fixedSize 120 got %d", saved.FixedSize)
	}
}

func TestErrorsAreJSON(t *testing.T) {
	ts, _, _ := newTestServer(t, fakeUploader{})

	resp, err := http.Get(ts.URL + "/upload")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body errorBody
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 got %d", resp.StatusCode)
	} else if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	} else if body.Error != "method not allowed" {
		t.Errorf("unexpected error body %+v", body)
	}
}
