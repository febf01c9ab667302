package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// Metrics holds the engine's Prometheus collectors.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	passVisited   prometheus.Histogram
	events        *prometheus.CounterVec
	operations    *prometheus.CounterVec
	effects       *prometheus.CounterVec
	errors        *prometheus.CounterVec
	epoch         prometheus.Gauge
	nodes         prometheus.Gauge
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "animgraph",
			Subsystem: "scheduler",
			Name:      "frames_total",
			Help:      "Frames processed by the scheduler",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "animgraph",
			Subsystem: "scheduler",
			Name:      "frame_duration_seconds",
			Help:      "Time spent processing one frame",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
		}),
		passVisited: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "animgraph",
			Subsystem: "graph",
			Name:      "pass_visited_nodes",
			Help:      "Nodes visited per propagation pass",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "animgraph",
			Subsystem: "router",
			Name:      "events_total",
			Help:      "Inbound events by outcome",
		}, []string{"outcome"}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "animgraph",
			Subsystem: "gateway",
			Name:      "operations_total",
			Help:      "Structural operations applied, by kind and status",
		}, []string{"op", "status"}),
		effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "animgraph",
			Subsystem: "graph",
			Name:      "effects_total",
			Help:      "Outbound side effects by channel",
		}, []string{"channel"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "animgraph",
			Subsystem: "scheduler",
			Name:      "errors_total",
			Help:      "Errors raised while processing frames, by stage",
		}, []string{"stage"}),
		epoch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "animgraph",
			Subsystem: "graph",
			Name:      "epoch",
			Help:      "Current update epoch",
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "animgraph",
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Registered nodes",
		}),
	}
}

func (m *Metrics) observeFrame(r FrameReport, seconds float64) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(seconds)
	m.passVisited.Observe(float64(r.Pass.Visited))
	m.epoch.Set(float64(r.Pass.Epoch + 1))
	if r.EventErr != nil {
		m.errors.WithLabelValues("events").Inc()
	}
	if r.PassErr != nil {
		m.errors.WithLabelValues("propagation").Inc()
	}
}

func (m *Metrics) eventQueued() {
	if m == nil {
		return
	}
	m.events.WithLabelValues("queued").Inc()
}

func (m *Metrics) eventDropped() {
	if m == nil {
		return
	}
	m.events.WithLabelValues("dropped").Inc()
}

func (m *Metrics) operationApplied(op ir.OpKind, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(string(op), status).Inc()
}

func (m *Metrics) effect(channel string) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(channel).Inc()
}

func (m *Metrics) setNodes(reg *graph.Registry) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(reg.Len()))
}
