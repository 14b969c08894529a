package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ActuatorMetrics struct {
	registry *prometheus.Registry
	service  string

	commandsTotal *prometheus.CounterVec
	moveDuration  prometheus.Histogram
	lastAngle     prometheus.Gauge
	commandLag    prometheus.Histogram
}

func NewActuatorMetrics(service string) *ActuatorMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	commandsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actuator",
			Name:      "commands_total",
			Help:      "Servo commands by outcome (applied, clamped, dropped, error).",
		},
		[]string{"service", "status"},
	)
	moveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "actuator",
			Name:        "move_duration_seconds",
			Help:        "Time spent driving the servo per command.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			ConstLabels: constLabels,
		},
	)
	lastAngle := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "actuator",
			Name:        "last_angle_degrees",
			Help:        "Angle of the most recently applied command.",
			ConstLabels: constLabels,
		},
	)
	commandLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "actuator",
			Name:        "command_lag_seconds",
			Help:        "Delay between command issue and application.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(commandsTotal, moveDuration, lastAngle, commandLag)

	return &ActuatorMetrics{
		registry:      registry,
		service:       service,
		commandsTotal: commandsTotal,
		moveDuration:  moveDuration,
		lastAngle:     lastAngle,
		commandLag:    commandLag,
	}
}

func (m *ActuatorMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ActuatorMetrics) CommandDropped() {
	m.commandsTotal.WithLabelValues(m.service, "dropped").Inc()
}

func (m *ActuatorMetrics) FinishCommand(angle int, clamped bool, issuedAt time.Time, duration time.Duration, err error) {
	status := "applied"
	switch {
	case err != nil:
		status = "error"
	case clamped:
		status = "clamped"
	}
	m.commandsTotal.WithLabelValues(m.service, status).Inc()
	m.moveDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.lastAngle.Set(float64(angle))
	if !issuedAt.IsZero() {
		if lag := time.Since(issuedAt); lag >= 0 {
			m.commandLag.Observe(lag.Seconds())
		}
	}
}
