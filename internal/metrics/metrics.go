package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DispatchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_commands_total",
			Help: "Total number of device commands attempted",
		},
		[]string{"command", "outcome"},
	)

	BroadcastsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Total number of frames broadcast to live subscribers",
		},
	)

	ActiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_subscribers_active",
			Help: "Number of live subscriber connections",
		},
	)

	DroppedSubscribers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_subscribers_dropped_total",
			Help: "Connections dropped after a failed delivery",
		},
	)

	TelemetryFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_frames_total",
			Help: "Telemetry frames processed by ingest",
		},
		[]string{"outcome"},
	)

	MeasurementsUpserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_measurements_total",
			Help: "Measurement records upserted or skipped",
		},
		[]string{"technology", "outcome"},
	)
)

// Register wires all collectors into the default registry.
func Register() {
	prometheus.MustRegister(
		DispatchAttempts,
		BroadcastsSent,
		ActiveSubscribers,
		DroppedSubscribers,
		TelemetryFrames,
		MeasurementsUpserted,
	)
}
