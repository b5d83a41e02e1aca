package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"promptist/launcher"
	"promptist/logger"
	"promptist/prompt"
	"promptist/shortcut"
	"promptist/tracker"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, prompt.ErrNotFound), errors.Is(err, launcher.ErrNoShortcut):
		return http.StatusNotFound
	case errors.Is(err, prompt.ErrInvalid), errors.Is(err, shortcut.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, prompt.ErrShortcutConflict), errors.Is(err, shortcut.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a JSON body. Server errors are logged and their
// detail withheld.
func writeError(w http.ResponseWriter, err error, what string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Logger.Errorw("Request failed", "op", what, "error", err)
		msg = "failed to " + what
	}
	body := map[string]string{"error": msg}
	if hints := errors.GetAllHints(err); len(hints) > 0 && status != http.StatusInternalServerError {
		body["hint"] = hints[0]
	}
	writeJSON(w, status, body)
}

var errBadBody = errors.Mark(errors.New("invalid request body"), prompt.ErrInvalid)

// decodeBody reads a JSON request body. With optional set, an empty body
// leaves v untouched.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return nil
	}
	return errBadBody
}
