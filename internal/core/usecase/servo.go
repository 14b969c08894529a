package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

// ServoUseCase applies published commands on the actuator side.
type ServoUseCase struct {
	servo    ports.Servo
	observer ports.ActuatorObserver

	mu      sync.Mutex
	lastID  string
	timeout time.Duration
}

func NewServoUseCase(servo ports.Servo, observer ports.ActuatorObserver) *ServoUseCase {
	return &ServoUseCase{servo: servo, observer: observer, timeout: 5 * time.Second}
}

// Apply clamps the angle to the servo range and moves the needle.
// A redelivered command (same id as the previous one) is ignored.
func (uc *ServoUseCase) Apply(ctx context.Context, cmd domain.ActuatorCommand) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if cmd.CommandID != "" && cmd.CommandID == uc.lastID {
		slog.Debug("actuator_command_duplicate", "command_id", cmd.CommandID)
		return nil
	}

	angle, clamped := ClampAngle(cmd.Angle)
	if clamped {
		slog.Warn("actuator_angle_clamped", "command_id", cmd.CommandID, "requested", cmd.Angle, "applied", angle)
	}

	moveCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	err := uc.servo.MoveTo(moveCtx, angle)
	if uc.observer != nil {
		uc.observer.FinishCommand(angle, clamped, cmd.IssuedAt, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("move servo to %d: %w", angle, err)
	}

	uc.lastID = cmd.CommandID
	slog.Info("actuator_command",
		"command_id", cmd.CommandID,
		"session_id", cmd.SessionID,
		"angle", angle,
		"label", cmd.Label,
		"source", cmd.Source,
	)
	return nil
}

func ClampAngle(angle int) (int, bool) {
	switch {
	case angle < domain.MinServoAngle:
		return domain.MinServoAngle, true
	case angle > domain.MaxServoAngle:
		return domain.MaxServoAngle, true
	default:
		return angle, false
	}
}
