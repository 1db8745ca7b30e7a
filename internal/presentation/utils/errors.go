package utils

import (
	"net/http"

	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
)

// WriteError maps err to a status and logs the ones the client cannot act on.
func WriteError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status := json.WriteDomainError(w, err)
	if status < http.StatusInternalServerError {
		return
	}

	level := logger.Error
	if status == http.StatusServiceUnavailable {
		level = logger.Warn
	}
	level(logging.RequestResponse, logging.ExternalService, "request failed", map[logging.ExtraKey]any{
		logging.Method:       r.Method,
		logging.Path:         r.URL.Path,
		logging.StatusCode:   status,
		logging.ErrorMessage: err.Error(),
	})
}
