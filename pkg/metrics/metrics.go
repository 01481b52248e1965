// Package metrics exposes Prometheus metrics for the tutoring server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scribe"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	streamsActive   *prometheus.GaugeVec
	streamsTotal    *prometheus.CounterVec
	streamDuration  *prometheus.HistogramVec
	streamEvents    *prometheus.CounterVec
	completions     *prometheus.CounterVec
	completionTime  *prometheus.HistogramVec
	timerRequests   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		streamsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "streams_active",
				Help:      "Number of SSE replies currently streaming",
			},
			[]string{"route"},
		),
		streamsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total number of SSE replies by outcome",
			},
			[]string{"route", "outcome"}, // outcome: completed, failed, client_gone, stalled
		),
		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_duration_seconds",
				Help:      "Duration of SSE replies in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"route"},
		),
		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_events_total",
				Help:      "Total number of SSE events written to clients",
			},
			[]string{"route"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Total number of non-streaming provider completions",
			},
			[]string{"route", "provider", "status"},
		),
		completionTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Duration of non-streaming provider completions in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"route", "provider"},
		),
		timerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timer_requests_total",
				Help:      "Total number of subproblem timer requests by HTTP status",
			},
			[]string{"operation", "code"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of analytics events published",
			},
			[]string{"event_type", "status"},
		),
	}

	m.registry.MustRegister(
		m.streamsActive,
		m.streamsTotal,
		m.streamDuration,
		m.streamEvents,
		m.completions,
		m.completionTime,
		m.timerRequests,
		m.eventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StreamStarted marks a reply on route as streaming.
func (m *Metrics) StreamStarted(route string) {
	m.streamsActive.WithLabelValues(route).Inc()
}

// StreamFinished records a finished reply.
func (m *Metrics) StreamFinished(route, outcome string, d time.Duration, events int) {
	m.streamsActive.WithLabelValues(route).Dec()
	m.streamsTotal.WithLabelValues(route, outcome).Inc()
	m.streamDuration.WithLabelValues(route).Observe(d.Seconds())
	m.streamEvents.WithLabelValues(route).Add(float64(events))
}

// Completion records a non-streaming provider call.
func (m *Metrics) Completion(route, provider string, d time.Duration, err error) {
	m.completions.WithLabelValues(route, provider, status(err)).Inc()
	m.completionTime.WithLabelValues(route, provider).Observe(d.Seconds())
}

// TimerRequest records a timer operation and the HTTP status it produced.
func (m *Metrics) TimerRequest(operation string, code int) {
	m.timerRequests.WithLabelValues(operation, strconv.Itoa(code)).Inc()
}

// EventPublished records a publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	m.eventsPublished.WithLabelValues(eventType, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
