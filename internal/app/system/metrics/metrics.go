// Package metrics exposes Prometheus instrumentation. All methods are safe
// on a nil *Metrics so handlers can run without it in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	materials *prometheus.CounterVec
	chat      prometheus.Counter
	reminders prometheus.Counter
	activity  *prometheus.CounterVec
}

// New builds a registry with the Go and process collectors plus the
// application metrics.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studypal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studypal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		materials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studypal",
			Name:      "materials_total",
			Help:      "Material lifecycle operations by type and operation.",
		}, []string{"type", "op"}),
		chat: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studypal",
			Name:      "chat_messages_total",
			Help:      "Group chat messages posted.",
		}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studypal",
			Name:      "reminders_dispatched_total",
			Help:      "Event reminders delivered.",
		}),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studypal",
			Name:      "activity_events_total",
			Help:      "Activity stream publishes by outcome.",
		}, []string{"status"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.materials, m.chat, m.reminders, m.activity,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) MaterialCreated(materialType string) {
	if m != nil {
		m.materials.WithLabelValues(materialType, "create").Inc()
	}
}

func (m *Metrics) MaterialDeleted(materialType string) {
	if m != nil {
		m.materials.WithLabelValues(materialType, "delete").Inc()
	}
}

func (m *Metrics) ChatMessage() {
	if m != nil {
		m.chat.Inc()
	}
}

func (m *Metrics) RemindersDispatched(n int) {
	if m != nil && n > 0 {
		m.reminders.Add(float64(n))
	}
}

func (m *Metrics) ActivityPublished(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.activity.WithLabelValues(status).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
