// internal/controller/errors.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
)

// writeError maps the typed domain errors onto HTTP statuses so callers
// can tell not-found from invalid-transition from conflict.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notFound *appErrors.ErrCampaignNotFound
	var deviceNotFound *appErrors.ErrDeviceNotFound
	var invalid *appErrors.ErrInvalidTransition
	var conflict *appErrors.ErrGroupConflict
	var badTelemetry *appErrors.ErrBadTelemetry

	switch {
	case errors.As(err, &notFound), errors.As(err, &deviceNotFound):
		status = http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &badTelemetry):
		status = http.StatusBadRequest
	case errors.As(err, &conflict):
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
