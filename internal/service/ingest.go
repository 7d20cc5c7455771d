// internal/service/ingest.go
package service

import (
	"log"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/metrics"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

// TelemetryService normalizes device-pushed measurement batches and
// upserts them by natural key.
type TelemetryService struct {
	DeviceRepo      repository.DeviceRepositoryInterface
	MeasurementRepo repository.MeasurementRepositoryInterface
}

// IngestResult reports what happened to one frame.
type IngestResult struct {
	DeviceID   int `json:"device_id"`
	GSMStored  int `json:"gsm_stored"`
	GSMSkipped int `json:"gsm_skipped"`
	LTEStored  int `json:"lte_stored"`
	LTESkipped int `json:"lte_skipped"`
}

// Ingest processes one telemetry frame. A missing campaign or device
// reference fails the whole frame; a malformed individual record is
// skipped and the rest of the batch is still processed.
func (s *TelemetryService) Ingest(msg *model.TelemetryMessage) (*IngestResult, error) {
	if msg == nil || msg.Campaign == nil || msg.Campaign.ID <= 0 {
		metrics.TelemetryFrames.WithLabelValues("rejected").Inc()
		return nil, appErrors.NewBadTelemetry("campaign data is missing")
	}
	if msg.Device == nil || msg.Device.SerialNumber == "" {
		metrics.TelemetryFrames.WithLabelValues("rejected").Inc()
		return nil, appErrors.NewBadTelemetry("device data is missing")
	}

	device := &model.Device{
		SerialNumber: msg.Device.SerialNumber,
		IP:           msg.Device.IP,
		IsConnected:  msg.Device.IsConnected,
	}
	if err := s.DeviceRepo.UpsertBySerial(device); err != nil {
		metrics.TelemetryFrames.WithLabelValues("error").Inc()
		return nil, err
	}

	deviceID := device.ID
	if deviceID == 0 {
		id, err := s.DeviceRepo.GetIDBySerial(msg.Device.SerialNumber)
		if err != nil {
			metrics.TelemetryFrames.WithLabelValues("error").Inc()
			return nil, err
		}
		deviceID = id
	}

	result := &IngestResult{DeviceID: deviceID}

	for _, rec := range msg.GSMData {
		// Records with no operator codes at all are noise, not errors.
		if rec.MCC.IsEmpty() && rec.MNC.IsEmpty() {
			result.GSMSkipped++
			metrics.MeasurementsUpserted.WithLabelValues("gsm", "skipped").Inc()
			continue
		}

		m := &model.GSMMeasurement{
			CampaignID:     msg.Campaign.ID,
			DeviceID:       deviceID,
			MCC:            rec.MCC.Int(),
			MNC:            rec.MNC.Int(),
			Operator:       rec.Operator.StringPtr(),
			LocalAreaCode:  rec.LocalAreaCode.Int(),
			ARFCN:          rec.ARFCN.Int(),
			CellIdentity:   rec.CellIdentity.Int(),
			RxLev:          rec.RxLev.Int(),
			RxLevAccessMin: rec.RxLevAccessMin.Float(),
			Status:         statusOrReal(rec.Status),
			RSSI:           rec.RSSI.Float(),
		}
		if err := s.MeasurementRepo.UpsertGSM(m); err != nil {
			log.Println("⚠️ failed to upsert gsm measurement:", err)
			result.GSMSkipped++
			metrics.MeasurementsUpserted.WithLabelValues("gsm", "error").Inc()
			continue
		}
		result.GSMStored++
		metrics.MeasurementsUpserted.WithLabelValues("gsm", "ok").Inc()
	}

	for _, rec := range msg.LTEData {
		if rec.MCC.IsEmpty() && rec.MNC.IsEmpty() {
			result.LTESkipped++
			metrics.MeasurementsUpserted.WithLabelValues("lte", "skipped").Inc()
			continue
		}

		m := &model.LTEMeasurement{
			CampaignID:             msg.Campaign.ID,
			DeviceID:               deviceID,
			MCC:                    rec.MCC.Int(),
			MNC:                    rec.MNC.Int(),
			Operator:               rec.Operator.StringPtr(),
			ARFCN:                  rec.ARFCN.Int(),
			CellIdentity:           rec.CellIdentity.Int(),
			TrackingAreaCode:       rec.TrackingAreaCode.Int(),
			FrequencyBandIndicator: rec.FrequencyBandIndicator.Int(),
			SignalLevel:            rec.SignalLevel.Int(),
			SNR:                    rec.SNR.Int(),
			RxLevMin:               rec.RxLevMin.Int(),
			Status:                 statusOrReal(rec.Status),
			RSSI:                   rec.RSSI.Float(),
		}
		if err := s.MeasurementRepo.UpsertLTE(m); err != nil {
			log.Println("⚠️ failed to upsert lte measurement:", err)
			result.LTESkipped++
			metrics.MeasurementsUpserted.WithLabelValues("lte", "error").Inc()
			continue
		}
		result.LTEStored++
		metrics.MeasurementsUpserted.WithLabelValues("lte", "ok").Inc()
	}

	metrics.TelemetryFrames.WithLabelValues("ok").Inc()
	return result, nil
}

// statusOrReal defaults a missing status flag to "real" (true).
func statusOrReal(status *bool) bool {
	if status == nil {
		return true
	}
	return *status
}
