// Package metrics exposes the Prometheus collectors shared by the services
// and the notification worker. Every method is safe on a nil *Metrics so
// components can run without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "melody"

// Metrics defines our Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	eventsPublished   *prometheus.CounterVec
	messagesHandled   *prometheus.CounterVec
	connectAttempts   *prometheus.CounterVec
	workerState       *prometheus.GaugeVec
	collaboratorCalls *prometheus.CounterVec
	requestCount      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: registry,
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "events_published_total",
			Help:        "Events handed to the broker, by routing key and result.",
			ConstLabels: labels,
		}, []string{"routing_key", "result"}),
		messagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "messages_handled_total",
			Help:        "Deliveries processed by the worker, by routing key and outcome.",
			ConstLabels: labels,
		}, []string{"routing_key", "outcome"}),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "broker_connect_attempts_total",
			Help:        "Worker connection attempts, by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		workerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "worker_state",
			Help:        "1 for the state the worker is currently in.",
			ConstLabels: labels,
		}, []string{"state"}),
		collaboratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "collaborator_calls_total",
			Help:        "Synchronous calls to peer services, by target and result.",
			ConstLabels: labels,
		}, []string{"target", "result"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests served.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.eventsPublished,
		m.messagesHandled,
		m.connectAttempts,
		m.workerState,
		m.collaboratorCalls,
		m.requestCount,
		m.requestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) EventPublished(routingKey, result string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(routingKey, result).Inc()
}

func (m *Metrics) MessageHandled(routingKey, outcome string) {
	if m == nil {
		return
	}
	m.messagesHandled.WithLabelValues(routingKey, outcome).Inc()
}

func (m *Metrics) ConnectAttempt(result string) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

// WorkerState flips the gauge to current and zeroes every other known state.
func (m *Metrics) WorkerState(current string, all ...string) {
	if m == nil {
		return
	}
	for _, s := range all {
		m.workerState.WithLabelValues(s).Set(0)
	}
	m.workerState.WithLabelValues(current).Set(1)
}

func (m *Metrics) CollaboratorCall(target, result string) {
	if m == nil {
		return
	}
	m.collaboratorCalls.WithLabelValues(target, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
