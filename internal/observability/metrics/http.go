package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

const namespace = "oracion"

// HTTPServerMetrics holds the API registry: transport metrics plus the
// domain counters fed through the usecase Observer port.
type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	reflectionsTotal *prometheus.CounterVec
	verdictsTotal    *prometheus.CounterVec
	confidence       prometheus.Histogram
	sideEffectsTotal *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reflectionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "board",
			Name:      "reflections_total",
			Help:      "Colour reflections by liturgical category.",
		},
		[]string{"service", "category"},
	)
	verdictsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "board",
			Name:      "verdicts_total",
			Help:      "Verdicts by label and whether a JSON object was extracted from the model.",
		},
		[]string{"service", "label", "extracted"},
	)
	confidence := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "board",
			Name:        "verdict_confidence",
			Help:        "Distribution of clamped verdict confidence.",
			Buckets:     []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	sideEffectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "board",
			Name:      "side_effects_total",
			Help:      "Optional collaborator calls (assess, speech, publish) by outcome.",
		},
		[]string{"service", "effect", "status"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker of an operation is not closed.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		reflectionsTotal,
		verdictsTotal,
		confidence,
		sideEffectsTotal,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		service:          service,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		reflectionsTotal: reflectionsTotal,
		verdictsTotal:    verdictsTotal,
		confidence:       confidence,
		sideEffectsTotal: sideEffectsTotal,
		breakerState:     breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/sessions/"); ok {
		switch {
		case strings.HasSuffix(rest, "/latest"):
			return "/v1/sessions/{session_id}/latest"
		case strings.HasSuffix(rest, "/readings"):
			return "/v1/sessions/{session_id}/readings"
		default:
			return "/v1/sessions/{session_id}"
		}
	}
	switch path {
	case "/healthz", "/metrics", "/v1/reflections", "/v1/interpretations",
		"/v1/actuator/angle", "/v1/tools/extract-json":
		return path
	}
	if strings.HasPrefix(path, "/v1/drawings/") {
		return "/v1/drawings/{key}"
	}
	return "other"
}

func (m *HTTPServerMetrics) ObserveReflection(category domain.Category) {
	m.reflectionsTotal.WithLabelValues(m.service, string(category)).Inc()
}

func (m *HTTPServerMetrics) ObserveVerdict(v domain.Verdict) {
	m.verdictsTotal.WithLabelValues(m.service, string(v.Label), strconv.FormatBool(v.Extracted)).Inc()
	m.confidence.Observe(float64(v.Confidence))
}

func (m *HTTPServerMetrics) ObserveSideEffect(effect string, status domain.SideEffectStatus) {
	if effect == "" {
		effect = "unknown"
	}
	m.sideEffectsTotal.WithLabelValues(m.service, effect, string(status)).Inc()
}

// ObserveBreakerState matches resilience.Config.OnStateChange.
func (m *HTTPServerMetrics) ObserveBreakerState(operation, _, to string) {
	open := 0.0
	if to != "closed" {
		open = 1
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(open)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
