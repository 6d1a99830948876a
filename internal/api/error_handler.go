package api

import (
	"net/http"

	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
)

// handleError centralizes error handling for HTTP responses. Every error is
// answered with a JSON body.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr := errors.Wrap(err)

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	body := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	// Parse errors carry the offending move or header, which the caller needs.
	if appErr.Code == errors.ErrCodeParse && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	writeJSON(w, r, appErr.Status, map[string]any{"error": body})
}
