package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sample Pipeline Metrics
var (
	// SamplesEnqueuedTotal tracks samples handed to the queue by the source
	SamplesEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "samples_enqueued_total",
			Help: "Total samples enqueued by the pose source",
		},
	)

	// SamplesBroadcastTotal tracks samples fanned out to at least one client
	SamplesBroadcastTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "samples_broadcast_total",
			Help: "Total samples delivered to at least one client",
		},
	)

	// SamplesDroppedTotal tracks samples drained with no clients connected
	SamplesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "samples_dropped_total",
			Help: "Total samples drained while no clients were connected",
		},
	)

	// QueueDepth tracks the queue depth observed at each drain
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sample_queue_depth",
			Help: "Samples waiting in the queue at the last drain",
		},
	)
)

// Broadcaster Metrics
var (
	// BroadcasterConnectedClients tracks total number of connected WebSocket clients
	BroadcasterConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcaster_connected_clients",
			Help: "Current number of registered WebSocket clients",
		},
	)

	// BroadcasterPassDuration tracks broadcast pass duration in seconds
	BroadcasterPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcaster_pass_duration_seconds",
			Help:    "Duration of one drain-and-send broadcast pass",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// BroadcasterClientsEvicted tracks clients removed after a failed send
	BroadcasterClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcaster_clients_evicted_total",
			Help: "Total clients evicted after a failed or stalled send",
		},
	)

	// BroadcasterStopTimeoutsTotal tracks broadcaster stops that exceeded timeout
	BroadcasterStopTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcaster_stop_timeouts_total",
			Help: "Broadcaster stops that exceeded timeout",
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketConnectionsTotal tracks total WebSocket connection attempts by result
	WebSocketConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total WebSocket connection attempts by result (success/error/rejected)",
		},
		[]string{"result"},
	)

	// WebSocketConnectionsRejected tracks rejected connection attempts by reason
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "Rejected WebSocket connection attempts by reason (global_limit/ip_limit/rate_limit)",
		},
		[]string{"reason"},
	)

	// WebSocketMessageSendDuration tracks WebSocket message send duration
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// WebSocketPingFailures tracks WebSocket ping failures
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total WebSocket ping failures (client not responding)",
		},
	)
)
