// internal/model/snapshot.go
package model

// Snapshot is the aggregated campaign state pushed to live subscribers.
type Snapshot struct {
	Campaign       *Campaign        `json:"campaign"`
	Devices        []Device         `json:"devices"`
	GSMData        []GSMMeasurement `json:"gsm_data"`
	LTEData        []LTEMeasurement `json:"lte_data"`
	TotalCount     int              `json:"total_count"`
	GSMTotal       int              `json:"gsm_total"`
	LTETotal       int              `json:"lte_total"`
	ThreatBTSCount int              `json:"threat_bts_count"`
	RealBTSCount   int              `json:"real_bts_count"`
}

// Frame is one message on the live channel.
type Frame struct {
	Message string    `json:"message"`
	Data    *Snapshot `json:"data,omitempty"`
}

// Live channel messages.
const (
	FrameData    = "send data campaign."
	FramePaused  = "Campaign is paused."
	FrameStopped = "Campaign has been stopped."
)
