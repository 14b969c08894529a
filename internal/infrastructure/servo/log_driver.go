package servo

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogDriver stands in for the hardware PWM driver: it records the target
// angle and waits for the time a hobby servo needs to get there.
type LogDriver struct {
	logger *slog.Logger
	// per60 is the travel time per 60 degrees; zero moves instantly.
	per60 time.Duration

	mu       sync.Mutex
	position int
}

func NewLogDriver(logger *slog.Logger, per60 time.Duration, start int) *LogDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDriver{logger: logger, per60: per60, position: start}
}

func (d *LogDriver) MoveTo(ctx context.Context, angle int) error {
	d.mu.Lock()
	from := d.position
	d.mu.Unlock()

	travel := angle - from
	if travel < 0 {
		travel = -travel
	}
	if d.per60 > 0 && travel > 0 {
		timer := time.NewTimer(d.per60 * time.Duration(travel) / 60)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	d.mu.Lock()
	d.position = angle
	d.mu.Unlock()
	d.logger.Info("servo_move", "from", from, "to", angle)
	return nil
}

func (d *LogDriver) Position() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}
