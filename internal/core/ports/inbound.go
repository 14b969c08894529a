package ports

import (
	"context"
	"io"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

// ReflectionService is the inbound contract for colour reflections.
type ReflectionService interface {
	Reflect(ctx context.Context, req domain.ReflectRequest) (*domain.Reflection, error)
}

// InterpretationService is the inbound contract for drawing interpretation.
type InterpretationService interface {
	Interpret(ctx context.Context, req domain.InterpretRequest) (*domain.Interpretation, error)
}

// ActuatorService is the inbound contract for manual servo moves.
type ActuatorService interface {
	Move(ctx context.Context, req domain.MoveRequest) (*domain.ActuatorCommand, error)
}

// DrawingReader streams a stored drawing back with its content type.
type DrawingReader interface {
	OpenDrawing(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// SessionReader is the inbound read model for session history.
type SessionReader interface {
	Latest(ctx context.Context, sessionID string) (*domain.Reading, error)
	List(ctx context.Context, sessionID string, limit int) ([]domain.Reading, error)
}
