package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

type ActuatorUseCase struct {
	publisher ports.ActuatorPublisher
	readings  ports.ReadingRepository
	observer  ports.Observer
}

// NewActuatorUseCase accepts a nil publisher when the actuator is disabled;
// Move then fails with ErrUnavailable.
func NewActuatorUseCase(
	publisher ports.ActuatorPublisher,
	readings ports.ReadingRepository,
	observer ports.Observer,
) *ActuatorUseCase {
	return &ActuatorUseCase{
		publisher: publisher,
		readings:  readings,
		observer:  observerOrNoop(observer),
	}
}

func (uc *ActuatorUseCase) Move(ctx context.Context, req domain.MoveRequest) (*domain.ActuatorCommand, error) {
	if req.Angle < domain.MinServoAngle || req.Angle > domain.MaxServoAngle {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"move actuator",
			fmt.Errorf("angle %d outside [%d,%d]", req.Angle, domain.MinServoAngle, domain.MaxServoAngle),
		)
	}
	if uc.publisher == nil {
		return nil, domain.WrapError(domain.ErrUnavailable, "move actuator", errors.New("actuator publishing is disabled"))
	}

	cmd := NewCommand(sessionOrNew(req.SessionID), req.Angle, "", domain.SourceManual)
	if err := uc.publisher.PublishCommand(ctx, cmd); err != nil {
		uc.observer.ObserveSideEffect(effectPublish, domain.SideEffectFailed)
		return nil, fmt.Errorf("publish actuator command: %w", err)
	}
	uc.observer.ObserveSideEffect(effectPublish, domain.SideEffectOK)

	angle := cmd.Angle
	reading := &domain.Reading{
		ID:         cmd.CommandID,
		SessionID:  cmd.SessionID,
		Kind:       domain.ReadingManual,
		Confidence: domain.DefaultConfidence,
		Angle:      &angle,
		Published:  true,
		CreatedAt:  cmd.IssuedAt,
	}
	if err := uc.readings.Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("save manual reading: %w", err)
	}
	return &cmd, nil
}

// NewCommand stamps a servo command with a fresh id and the current time.
func NewCommand(sessionID string, angle int, label domain.Label, source domain.CommandSource) domain.ActuatorCommand {
	return domain.ActuatorCommand{
		CommandID: uuid.NewString(),
		SessionID: sessionID,
		Angle:     angle,
		Label:     label,
		Source:    source,
		IssuedAt:  time.Now().UTC(),
	}
}
