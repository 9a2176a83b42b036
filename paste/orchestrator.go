// Package paste turns image pastes into uploaded markdown references.
//
// HandlePaste inserts a placeholder at the cursor, uploads the image with the
// active storage.Uploader in its own goroutine, then swaps the placeholder
// span for the image reference, or removes it when the upload fails. Each
// paste owns its span; concurrent pastes are not serialized.
package paste

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/staticbackendhq/imgpaste/extra"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
	"github.com/staticbackendhq/imgpaste/storage"
)

// ReloadDelay is how long settings must stay unchanged before the provider
// is rebuilt.
const ReloadDelay = 500 * time.Millisecond

const (
	msgUploaded = "Image uploaded successfully"
	msgFailed   = "Upload failed: %s"
)

// ErrReadFailed is returned when the clipboard payload cannot be read or
// decoded.
var ErrReadFailed = errors.New("unable to read image")

// Factory builds the provider matching the settings.
type Factory func(model.Settings) (storage.Uploader, error)

// Placeholder is the text inserted while an upload is in flight and the
// offset it was inserted at.
type Placeholder struct {
	Text  string
	Start int
}

// End is the offset right after the placeholder.
func (p Placeholder) End() int {
	return p.Start + utf8.RuneCountInString(p.Text)
}

// locate returns the span the placeholder occupies in doc now. Earlier edits
// may have shifted it, so the occurrence closest to Start wins. The captured
// offsets are returned when the text is gone.
func (p Placeholder) locate(doc string) (int, int) {
	if len(p.Text) == 0 {
		return p.Start, p.End()
	}

	best, found := 0, false
	for i := 0; ; {
		j := strings.Index(doc[i:], p.Text)
		if j < 0 {
			break
		}

		at := utf8.RuneCountInString(doc[:i+j])
		if !found || abs(at-p.Start) < abs(best-p.Start) {
			best, found = at, true
		}
		i += j + len(p.Text)
	}

	if !found {
		return p.Start, p.End()
	}
	return best, best + utf8.RuneCountInString(p.Text)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func newPlaceholder(start int) Placeholder {
	return Placeholder{
		Text:  fmt.Sprintf("![Uploading image %s...]()", uuid.NewString()[:8]),
		Start: start,
	}
}

// Markdown returns the image reference for url, sized when size > 0.
func Markdown(url string, size int) string {
	if size > 0 {
		return fmt.Sprintf("![|%d](%s)", size, url)
	}
	return fmt.Sprintf("![](%s)", url)
}

// Orchestrator owns the active upload provider and runs image pastes against
// it. It is safe for concurrent use.
type Orchestrator struct {
	Factory      Factory
	Notifier     Notifier
	Connectivity Connectivity
	Log          *logger.Logger

	// Clock and Delay drive the debounced Reload
	Clock Clock
	Delay time.Duration

	mu       sync.Mutex
	uploader storage.Uploader
	settings model.Settings
	pending  Timer
	// spans serializes locating and replacing placeholders
	spans sync.Mutex
	// seq identifies the latest Reload so a timer that fired late is ignored
	seq    uint64
	closed bool

	inflight sync.WaitGroup
}

// New returns an orchestrator without active provider, call Init or Reload.
func New(factory Factory, notifier Notifier, conn Connectivity, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		Factory:      factory,
		Notifier:     notifier,
		Connectivity: conn,
		Log:          log,
		Clock:        realClock{},
		Delay:        ReloadDelay,
		settings:     model.DefaultSettings(),
	}
}

// Init builds the provider right away, used once at startup.
func (o *Orchestrator) Init(s model.Settings) error {
	up, err := o.Factory(s)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	o.install(up, s, err)
	return err
}

// Reload schedules a provider rebuild for s. A Reload arriving before the
// delay elapsed replaces the pending one.
func (o *Orchestrator) Reload(s model.Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	if o.pending != nil {
		o.pending.Stop()
	}

	o.seq++
	seq := o.seq
	o.pending = o.Clock.AfterFunc(o.Delay, func() {
		o.apply(seq, s)
	})
}

func (o *Orchestrator) apply(seq uint64, s model.Settings) {
	up, err := o.Factory(s)

	o.mu.Lock()
	if seq != o.seq || o.closed {
		o.mu.Unlock()
		return
	}

	o.pending = nil
	o.install(up, s, err)
	o.mu.Unlock()

	if err != nil {
		o.Notifier.Notify(err.Error())
	}
}

// install must be called with mu held.
func (o *Orchestrator) install(up storage.Uploader, s model.Settings, err error) {
	o.settings = s
	if err != nil {
		o.uploader = nil
		o.Log.Warn().Err(err).Str("provider", s.Provider).Msg("upload provider not configured")
		return
	}

	o.uploader = up
	o.Log.Info().Str("provider", s.Provider).Msg("upload provider ready")
}

// Active returns the current provider, nil when none is configured, and
// the settings it was built from.
func (o *Orchestrator) Active() (storage.Uploader, model.Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.uploader, o.settings
}

// HandlePaste reports whether the event was taken over. Events that are not
// an image, arrive offline or find no configured provider are left to the
// host.
func (o *Orchestrator) HandlePaste(ctx context.Context, ed Editor, ev Event) bool {
	if len(ev.Items) == 0 {
		return false
	}

	item := ev.Items[len(ev.Items)-1]
	if !model.IsImage(item.MimeType) {
		return false
	}

	if o.Connectivity != nil && !o.Connectivity.Online() {
		return false
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}

	up, s := o.uploader, o.settings
	if up == nil {
		o.mu.Unlock()
		o.Log.Warn().Msg("image paste ignored, no upload provider configured")
		return false
	}

	// Add under mu orders it before the Wait in Close
	o.inflight.Add(1)
	o.mu.Unlock()

	ph := newPlaceholder(ed.Cursor())
	ed.ReplaceSelection(ph.Text)

	go func() {
		defer o.inflight.Done()
		o.complete(ctx, ed, ph, up, s, item)
	}()

	return true
}

func (o *Orchestrator) complete(ctx context.Context, ed Editor, ph Placeholder, up storage.Uploader, s model.Settings, item Item) {
	f, err := o.upload(ctx, up, s, item)
	if err != nil {
		o.settle(ed, ph, "")
		o.Log.Error().Err(err).Str("file", item.Name).Msg("image upload failed")
		o.Notifier.Notify(fmt.Sprintf(msgFailed, err.Error()))
		return
	}

	o.settle(ed, ph, f.Markdown)
	o.Notifier.Notify(msgUploaded)
}

// settle swaps the placeholder for text wherever it sits in the document.
func (o *Orchestrator) settle(ed Editor, ph Placeholder, text string) {
	o.spans.Lock()
	defer o.spans.Unlock()

	start, end := ph.locate(ed.String())
	ed.ReplaceRange(text, start, end)
}

// Upload sends one image with the active provider, outside of any editor.
func (o *Orchestrator) Upload(ctx context.Context, item Item) (model.File, error) {
	up, s := o.Active()
	if up == nil {
		return model.File{}, fmt.Errorf("no upload provider: %w", storage.ErrConfigMissing)
	}
	return o.upload(ctx, up, s, item)
}

func (o *Orchestrator) upload(ctx context.Context, up storage.Uploader, s model.Settings, item Item) (model.File, error) {
	if item.Data == nil {
		return model.File{}, ErrReadFailed
	}

	b, err := io.ReadAll(item.Data)
	if err != nil {
		return model.File{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	data := model.UploadFileData{Name: item.Name, MimeType: item.MimeType, Data: b}

	data, err = extra.ResizeImage(data, s.MaxWidth)
	if err != nil {
		return model.File{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	url, err := up.Upload(ctx, data)
	if err != nil {
		return model.File{}, err
	}

	o.Log.Debug().Str("url", url).Int("size", len(data.Data)).Msg("image uploaded")

	return model.File{
		URL:      url,
		Markdown: Markdown(url, s.FixedSize),
		Size:     int64(len(data.Data)),
		Uploaded: time.Now(),
	}, nil
}

// Wait blocks until every upload started by HandlePaste has finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close cancels a pending Reload and waits for in-flight uploads.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
	o.mu.Unlock()

	o.Wait()
}
