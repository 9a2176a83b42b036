package imgpaste

import (
	"net/http"

	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
	"github.com/staticbackendhq/imgpaste/paste"
	"github.com/staticbackendhq/imgpaste/settings"
)

// redactedToken replaces the GCS token in responses. Posting it back keeps
// the stored token.
const redactedToken = "********"

func redact(s model.Settings) model.Settings {
	if len(s.GCSToken) > 0 {
		s.GCSToken = redactedToken
	}
	return s
}

type preferences struct {
	store settings.Store
	orch  *paste.Orchestrator
	log   *logger.Logger
}

// handle returns the stored settings on GET and saves them on POST. A save
// schedules the debounced provider rebuild.
func (p *preferences) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s, err := p.store.Load(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respond(w, http.StatusOK, redact(s))
	case http.MethodPost:
		s := model.DefaultSettings()
		if err := parseBody(r.Body, &s); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if s.GCSToken == redactedToken {
			stored, err := p.store.Load(r.Context())
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			s.GCSToken = stored.GCSToken
		}

		if err := p.store.Save(r.Context(), s); err != nil {
			p.log.Error().Err(err).Msg("unable to save settings")
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		p.orch.Reload(s)

		respond(w, http.StatusOK, redact(s))
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
