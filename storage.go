package imgpaste

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/staticbackendhq/imgpaste/editor"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
	"github.com/staticbackendhq/imgpaste/paste"
	"github.com/staticbackendhq/imgpaste/storage"
)

// maxUploadSize bounds the multipart form kept in memory
const maxUploadSize = 32 << 20

type uploads struct {
	orch *paste.Orchestrator
	log  *logger.Logger
}

// readItem turns the "file" form field into a clipboard item.
func readItem(r *http.Request) (paste.Item, error) {
	file, h, err := r.FormFile("file")
	if err != nil {
		return paste.Item{}, err
	}
	defer file.Close()

	b, err := io.ReadAll(file)
	if err != nil {
		return paste.Item{}, err
	}

	return paste.Item{
		MimeType: mimeOf(h, b),
		Name:     h.Filename,
		Data:     bytes.NewReader(b),
	}, nil
}

func mimeOf(h *multipart.FileHeader, b []byte) string {
	if ct := h.Header.Get("Content-Type"); len(ct) > 0 && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(b)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, paste.ErrReadFailed):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrConfigMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrAuth),
		errors.Is(err, storage.ErrExecutableNotFound),
		errors.Is(err, storage.ErrEmptyToken):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrUploadFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (u *uploads) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := readItem(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !model.IsImage(item.MimeType) {
		respondError(w, http.StatusBadRequest, "only images can be uploaded")
		return
	}

	f, err := u.orch.Upload(r.Context(), item)
	if err != nil {
		u.log.Error().Err(err).Str("file", item.Name).Msg("upload failed")
		respondError(w, statusOf(err), err.Error())
		return
	}

	respond(w, http.StatusOK, f)
}

// doneEditor signals once the orchestrator settled the placeholder span.
type doneEditor struct {
	*editor.Buffer
	done chan struct{}
}

func (e doneEditor) ReplaceRange(text string, start, end int) {
	e.Buffer.ReplaceRange(text, start, end)
	close(e.done)
}

type pasteResult struct {
	Handled  bool   `json:"handled"`
	Document string `json:"document"`
}

// paste applies an image paste to the posted document at cursor and returns
// the resulting document.
func (u *uploads) paste(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := readItem(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := r.Form.Get("document")

	cursor := len([]rune(doc))
	if s := r.Form.Get("cursor"); len(s) > 0 {
		cursor, err = strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
	}

	ed := doneEditor{Buffer: editor.NewBuffer(doc, cursor), done: make(chan struct{})}

	handled := u.orch.HandlePaste(r.Context(), ed, paste.Event{Items: []paste.Item{item}})
	if handled {
		<-ed.done
	}

	respond(w, http.StatusOK, pasteResult{Handled: handled, Document: ed.String()})
}
