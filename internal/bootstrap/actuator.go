package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/oracion-board/internal/config"
	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
	"github.com/kirillkom/oracion-board/internal/core/usecase"
	"github.com/kirillkom/oracion-board/internal/infrastructure/queue/nats"
	"github.com/kirillkom/oracion-board/internal/infrastructure/servo"
	"github.com/kirillkom/oracion-board/internal/observability/metrics"
)

// SG90-class servos travel 60 degrees in roughly 100ms.
const servoSpeedPer60 = 100 * time.Millisecond

// ActuatorWorker is the servo-side process: it consumes commands and moves the needle.
type ActuatorWorker struct {
	Config   config.Config
	Commands ports.ActuatorSubscriber
	Servo    *usecase.ServoUseCase
	Metrics  *metrics.ActuatorMetrics

	closeFn func()
}

func NewActuatorWorker(_ context.Context, cfg config.Config) (*ActuatorWorker, error) {
	m := metrics.NewActuatorMetrics("oracion-actuator")
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSActuatorSubject, nats.Options{
		ClientName:  "oracion-actuator",
		OnMalformed: func(error) { m.CommandDropped() },
	})
	if err != nil {
		return nil, fmt.Errorf("init actuator queue: %w", err)
	}

	driver := servo.NewLogDriver(slog.Default(), servoSpeedPer60, domain.AngleMedio)
	return &ActuatorWorker{
		Config:   cfg,
		Commands: queue,
		Servo:    usecase.NewServoUseCase(driver, m),
		Metrics:  m,
		closeFn:  queue.Close,
	}, nil
}

func (w *ActuatorWorker) Run(ctx context.Context) error {
	return w.Commands.SubscribeCommands(ctx, w.Servo.Apply)
}

func (w *ActuatorWorker) Close() {
	if w.closeFn != nil {
		w.closeFn()
		w.closeFn = nil
	}
}
