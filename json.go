package imgpaste

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodySize bounds JSON request bodies, the settings document is tiny
const maxBodySize = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// respond writes v as JSON. A value that cannot be marshalled becomes a 500
// with an errorBody.
func respond(w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		b, _ = json.Marshal(errorBody{Error: err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}

// respondError writes {"error": msg} with code, so clients such as the
// editor plugin can show msg as is.
func respondError(w http.ResponseWriter, code int, msg string) {
	respond(w, code, errorBody{Error: msg})
}

func parseBody(body io.ReadCloser, v interface{}) error {
	defer body.Close()
	return json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(v)
}
