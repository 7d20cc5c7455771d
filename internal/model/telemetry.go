// internal/model/telemetry.go
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Scalar holds a JSON value that device agents send inconsistently as a
// string, a number, or null. It keeps the raw text so ingest can decide
// whether the field was present and how to coerce it.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	*s = Scalar(b)
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// IsEmpty reports whether the value was absent, null or blank.
func (s Scalar) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

// Int coerces the value to an integer, nil when it does not parse.
func (s Scalar) Int() *int {
	v, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		// devices occasionally send integral values as floats
		f, ferr := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	return &v
}

// Float coerces the value to a float, nil when it does not parse.
func (s Scalar) Float() *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		return nil
	}
	return &f
}

// StringPtr returns the trimmed text, nil when empty.
func (s Scalar) StringPtr() *string {
	t := strings.TrimSpace(string(s))
	if t == "" {
		return nil
	}
	return &t
}

// TelemetryMessage is one inbound frame pushed by a device agent.
type TelemetryMessage struct {
	Campaign *TelemetryCampaign `json:"campaign"`
	Device   *TelemetryDevice   `json:"device"`
	GSMData  []GSMRecord        `json:"gsm_data"`
	LTEData  []LTERecord        `json:"lte_data"`
}

type TelemetryCampaign struct {
	ID int `json:"id"`
}

type TelemetryDevice struct {
	SerialNumber string `json:"serial_number"`
	IP           string `json:"ip"`
	IsConnected  bool   `json:"is_connected"`
}

// GSMRecord is a raw gsm measurement as sent by a device, before
// normalization.
type GSMRecord struct {
	MCC            Scalar `json:"mcc"`
	MNC            Scalar `json:"mnc"`
	Operator       Scalar `json:"operator"`
	LocalAreaCode  Scalar `json:"local_area_code"`
	ARFCN          Scalar `json:"arfcn"`
	CellIdentity   Scalar `json:"cell_identity"`
	RxLev          Scalar `json:"rxlev"`
	RxLevAccessMin Scalar `json:"rxlev_access_min"`
	RSSI           Scalar `json:"rssi"`
	Status         *bool  `json:"status"`
}

// LTERecord is a raw lte measurement as sent by a device.
type LTERecord struct {
	MCC                    Scalar `json:"mcc"`
	MNC                    Scalar `json:"mnc"`
	Operator               Scalar `json:"operator"`
	ARFCN                  Scalar `json:"arfcn"`
	CellIdentity           Scalar `json:"cell_identity"`
	TrackingAreaCode       Scalar `json:"tracking_area_code"`
	FrequencyBandIndicator Scalar `json:"frequency_band_indicator"`
	SignalLevel            Scalar `json:"signal_level"`
	SNR                    Scalar `json:"snr"`
	RxLevMin               Scalar `json:"rx_lev_min"`
	RSSI                   Scalar `json:"rssi"`
	Status                 *bool  `json:"status"`
}
