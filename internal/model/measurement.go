// internal/model/measurement.go
package model

import "time"

// GSMMeasurement is one gsm_data row. Natural key:
// (campaign_id, device_id, mcc, mnc, local_area_code, cell_identity).
type GSMMeasurement struct {
	ID             int       `db:"id" json:"id"`
	CampaignID     int       `db:"campaign_id" json:"campaign_id"`
	DeviceID       int       `db:"device_id" json:"device_id"`
	MCC            *int      `db:"mcc" json:"mcc"`
	MNC            *int      `db:"mnc" json:"mnc"`
	Operator       *string   `db:"operator" json:"operator"`
	LocalAreaCode  *int      `db:"local_area_code" json:"local_area_code"`
	ARFCN          *int      `db:"arfcn" json:"arfcn"`
	CellIdentity   *int      `db:"cell_identity" json:"cell_identity"`
	RxLev          *int      `db:"rxlev" json:"rxlev"`
	RxLevAccessMin *float64  `db:"rxlev_access_min" json:"rxlev_access_min"`
	Status         bool      `db:"status" json:"status"` // true = real BTS, false = threat
	RSSI           *float64  `db:"rssi" json:"rssi"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// DeviceIP is joined in from devices for snapshot payloads.
	DeviceIP string `db:"device_ip" json:"ip,omitempty"`
	Type     string `db:"-" json:"type,omitempty"`
}

// LTEMeasurement is one lte_data row. Natural key:
// (campaign_id, device_id, mcc, mnc, tracking_area_code, cell_identity).
type LTEMeasurement struct {
	ID                     int       `db:"id" json:"id"`
	CampaignID             int       `db:"campaign_id" json:"campaign_id"`
	DeviceID               int       `db:"device_id" json:"device_id"`
	MCC                    *int      `db:"mcc" json:"mcc"`
	MNC                    *int      `db:"mnc" json:"mnc"`
	Operator               *string   `db:"operator" json:"operator"`
	ARFCN                  *int      `db:"arfcn" json:"arfcn"`
	CellIdentity           *int      `db:"cell_identity" json:"cell_identity"`
	TrackingAreaCode       *int      `db:"tracking_area_code" json:"tracking_area_code"`
	FrequencyBandIndicator *int      `db:"frequency_band_indicator" json:"frequency_band_indicator"`
	SignalLevel            *int      `db:"signal_level" json:"signal_level"`
	SNR                    *int      `db:"snr" json:"snr"`
	RxLevMin               *int      `db:"rx_lev_min" json:"rx_lev_min"`
	Status                 bool      `db:"status" json:"status"`
	RSSI                   *float64  `db:"rssi" json:"rssi"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`

	DeviceIP string `db:"device_ip" json:"ip,omitempty"`
	Type     string `db:"-" json:"type,omitempty"`
}
