// Package metrics defines the bridge's prometheus collectors.
//
// Collectors are created unregistered; call Register once with the registry
// that should expose them. Every method is safe on a nil *Collectors, so
// components can take metrics optionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ephemeris"

// Call outcomes used as the outcome label.
const (
	OutcomeOK             = "ok"
	OutcomeInvalid        = "invalid_argument"
	OutcomeNotInitialized = "not_initialized"
	OutcomeInitFailed     = "initialization"
	OutcomeOperation      = "operation"
)

// Collectors holds every bridge metric.
type Collectors struct {
	CallsTotal       *prometheus.CounterVec
	CallDuration     *prometheus.HistogramVec
	GuardWaitSeconds prometheus.Histogram
	EngineInitsTotal *prometheus.CounterVec
	EngineUp         prometheus.Gauge
	TasksInflight    prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates unregistered collectors.
func New() *Collectors {
	return &Collectors{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of engine operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Engine operation duration in seconds, guard wait included",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		GuardWaitSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "guard_wait_seconds",
				Help:      "Time spent waiting to enter the engine",
				Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),
		EngineInitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_inits_total",
				Help:      "Engine initialization attempts by result",
			},
			[]string{"result"}, // "ok" / "error"
		),
		EngineUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engine_ready",
				Help:      "1 while the engine is initialized",
			},
		),
		TasksInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks_inflight",
				Help:      "Submitted tasks that have not completed",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Register registers every collector with reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.CallsTotal,
		c.CallDuration,
		c.GuardWaitSeconds,
		c.EngineInitsTotal,
		c.EngineUp,
		c.TasksInflight,
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// GuardWait implements engine.Observer.
func (c *Collectors) GuardWait(d time.Duration) {
	if c == nil {
		return
	}
	c.GuardWaitSeconds.Observe(d.Seconds())
}

// EngineInit implements engine.Observer.
func (c *Collectors) EngineInit(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.EngineInitsTotal.WithLabelValues(result).Inc()
}

// EngineReady implements engine.Observer.
func (c *Collectors) EngineReady(ready bool) {
	if c == nil {
		return
	}
	if ready {
		c.EngineUp.Set(1)
	} else {
		c.EngineUp.Set(0)
	}
}

// ObserveCall records one finished operation.
func (c *Collectors) ObserveCall(op, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.CallsTotal.WithLabelValues(op, outcome).Inc()
	c.CallDuration.WithLabelValues(op).Observe(d.Seconds())
}

// TaskStarted counts a submitted task.
func (c *Collectors) TaskStarted() {
	if c == nil {
		return
	}
	c.TasksInflight.Inc()
}

// TaskFinished uncounts a completed task.
func (c *Collectors) TaskFinished() {
	if c == nil {
		return
	}
	c.TasksInflight.Dec()
}
