package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

// ReadingRepository persists immutable session readings.
type ReadingRepository interface {
	Save(ctx context.Context, reading *domain.Reading) error
	Latest(ctx context.Context, sessionID string) (*domain.Reading, error)
	List(ctx context.Context, sessionID string, limit int) ([]domain.Reading, error)
}

// DrawingStorage stores captured canvas images.
type DrawingStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// VisionModel produces free text about an image.
type VisionModel interface {
	Describe(ctx context.Context, prompt string, image domain.Image) (string, error)
}

// VerdictModel asks a text model to assess an interpretation. The returned
// blob is expected, not guaranteed, to contain a JSON object.
type VerdictModel interface {
	Assess(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer turns text into audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (*domain.Speech, error)
}

// ActuatorPublisher publishes servo commands.
type ActuatorPublisher interface {
	PublishCommand(ctx context.Context, cmd domain.ActuatorCommand) error
}

// ActuatorSubscriber consumes servo commands until ctx is done.
type ActuatorSubscriber interface {
	SubscribeCommands(ctx context.Context, handler func(context.Context, domain.ActuatorCommand) error) error
}

// Observer receives domain events for metrics.
type Observer interface {
	ObserveReflection(category domain.Category)
	ObserveVerdict(v domain.Verdict)
	ObserveSideEffect(effect string, status domain.SideEffectStatus)
}

// Servo drives the board needle to an absolute angle in degrees.
type Servo interface {
	MoveTo(ctx context.Context, angle int) error
}

// ActuatorObserver receives actuator worker outcomes for metrics.
type ActuatorObserver interface {
	FinishCommand(angle int, clamped bool, issuedAt time.Time, duration time.Duration, err error)
}
