// internal/controller/telemetry_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/service"
)

type TelemetryController struct {
	Telemetry *service.TelemetryService
}

// Ingest accepts one device-pushed measurement batch. Malformed records
// inside the batch are skipped; only a frame without its campaign or
// device reference is rejected outright.
func (c *TelemetryController) Ingest(w http.ResponseWriter, r *http.Request) {
	var msg model.TelemetryMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.Telemetry.Ingest(&msg)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
