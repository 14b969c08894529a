package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
	"github.com/kirillkom/oracion-board/internal/core/verdict"
)

const (
	effectAssess  = "assess"
	effectSpeech  = "speech"
	effectPublish = "publish"
)

type InterpretOptions struct {
	MaxImageBytes int
	DefaultLang   string
}

func (o InterpretOptions) normalize() InterpretOptions {
	if o.MaxImageBytes <= 0 {
		o.MaxImageBytes = 5 << 20
	}
	if strings.TrimSpace(o.DefaultLang) == "" {
		o.DefaultLang = "es-US"
	}
	return o
}

type InterpretUseCase struct {
	vision   ports.VisionModel
	verdicts ports.VerdictModel
	speech   ports.SpeechSynthesizer
	actuator ports.ActuatorPublisher
	drawings ports.DrawingStorage
	readings ports.ReadingRepository
	observer ports.Observer
	opts     InterpretOptions
}

// NewInterpretUseCase wires the interpretation flow. speech and actuator may
// be nil; the matching side effects are then reported as skipped.
func NewInterpretUseCase(
	vision ports.VisionModel,
	verdicts ports.VerdictModel,
	speech ports.SpeechSynthesizer,
	actuator ports.ActuatorPublisher,
	drawings ports.DrawingStorage,
	readings ports.ReadingRepository,
	observer ports.Observer,
	opts InterpretOptions,
) *InterpretUseCase {
	return &InterpretUseCase{
		vision:   vision,
		verdicts: verdicts,
		speech:   speech,
		actuator: actuator,
		drawings: drawings,
		readings: readings,
		observer: observerOrNoop(observer),
		opts:     opts.normalize(),
	}
}

func (uc *InterpretUseCase) Interpret(ctx context.Context, req domain.InterpretRequest) (*domain.Interpretation, error) {
	req, err := uc.validate(req)
	if err != nil {
		return nil, err
	}

	text, err := uc.describe(ctx, req)
	if err != nil {
		return nil, err
	}

	readingID := uuid.NewString()
	drawingKey := readingID + extensionFor(req.Image.MimeType)
	if err := uc.drawings.Save(ctx, drawingKey, bytes.NewReader(req.Image.Data)); err != nil {
		return nil, fmt.Errorf("save drawing: %w", err)
	}

	v, assessment := uc.assess(ctx, req.Mode, text)
	uc.observer.ObserveVerdict(v)
	uc.observer.ObserveSideEffect(effectAssess, assessment.Status)

	cmd := NewCommand(req.SessionID, v.Angle, v.Label, domain.SourceVerdict)

	var (
		speech     *domain.Speech
		speechStep domain.SideEffect
		publish    domain.SideEffect
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		speech, speechStep = uc.speak(gctx, req, text)
		return nil
	})
	g.Go(func() error {
		publish = uc.publish(gctx, req, cmd)
		return nil
	})
	_ = g.Wait()
	uc.observer.ObserveSideEffect(effectSpeech, speechStep.Status)
	uc.observer.ObserveSideEffect(effectPublish, publish.Status)

	now := time.Now().UTC()
	angle := v.Angle
	reading := &domain.Reading{
		ID:         readingID,
		SessionID:  req.SessionID,
		Kind:       domain.ReadingInterpretation,
		Mode:       string(req.Mode),
		Text:       text,
		Label:      v.Label,
		Confidence: v.Confidence,
		Reason:     v.Reason,
		Angle:      &angle,
		Published:  publish.Status == domain.SideEffectOK,
		DrawingKey: drawingKey,
		CreatedAt:  now,
	}
	if err := uc.readings.Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("save interpretation reading: %w", err)
	}

	return &domain.Interpretation{
		ReadingID:  readingID,
		SessionID:  req.SessionID,
		Mode:       req.Mode,
		Text:       text,
		Verdict:    v,
		Command:    &cmd,
		Speech:     speech,
		DrawingKey: drawingKey,
		Assessment: assessment,
		SpeechStep: speechStep,
		Publish:    publish,
		CreatedAt:  now,
	}, nil
}

func (uc *InterpretUseCase) validate(req domain.InterpretRequest) (domain.InterpretRequest, error) {
	if len(req.Image.Data) == 0 {
		return req, domain.WrapError(domain.ErrInvalidInput, "interpret drawing", errors.New("image is required"))
	}
	if len(req.Image.Data) > uc.opts.MaxImageBytes {
		return req, domain.WrapError(
			domain.ErrInvalidInput,
			"interpret drawing",
			fmt.Errorf("image is %d bytes, limit is %d", len(req.Image.Data), uc.opts.MaxImageBytes),
		)
	}
	if strings.TrimSpace(req.Image.MimeType) == "" {
		req.Image.MimeType = http.DetectContentType(req.Image.Data)
	}
	if !strings.HasPrefix(req.Image.MimeType, "image/") {
		return req, domain.WrapError(
			domain.ErrInvalidInput,
			"interpret drawing",
			fmt.Errorf("unsupported content type %q", req.Image.MimeType),
		)
	}

	if req.Mode == "" {
		req.Mode = domain.ModeMystic
	}
	if !req.Mode.Valid() {
		return req, domain.WrapError(domain.ErrInvalidInput, "interpret drawing", fmt.Errorf("unknown mode %q", req.Mode))
	}

	req.SessionID = sessionOrNew(req.SessionID)
	if strings.TrimSpace(req.Lang) == "" {
		req.Lang = uc.opts.DefaultLang
	}
	return req, nil
}

func (uc *InterpretUseCase) describe(ctx context.Context, req domain.InterpretRequest) (string, error) {
	text, err := uc.vision.Describe(ctx, buildVisionPrompt(req.Mode, req.Note), req.Image)
	if err != nil {
		return "", fmt.Errorf("describe drawing: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrTemporary, "describe drawing", errors.New("empty model response"))
	}
	return text, nil
}

// assess never fails the request: a model error falls back to the default verdict.
func (uc *InterpretUseCase) assess(ctx context.Context, mode domain.InterpretMode, text string) (domain.Verdict, domain.SideEffect) {
	blob, err := uc.verdicts.Assess(ctx, buildVerdictPrompt(mode, text))
	if err != nil {
		slog.Warn("verdict_fallback", "error", err)
		return verdict.Default(), failedEffect(err)
	}
	return verdict.Parse(blob), domain.SideEffect{Status: domain.SideEffectOK}
}

func (uc *InterpretUseCase) speak(ctx context.Context, req domain.InterpretRequest, text string) (*domain.Speech, domain.SideEffect) {
	if !req.Speak {
		return nil, domain.SideEffect{Status: domain.SideEffectSkipped}
	}
	if uc.speech == nil {
		return nil, domain.SideEffect{Status: domain.SideEffectSkipped, Error: "speech synthesis is not configured"}
	}
	speech, err := uc.speech.Synthesize(ctx, text, req.Lang)
	if err != nil {
		slog.Warn("speech_failed", "session_id", req.SessionID, "error", err)
		return nil, failedEffect(err)
	}
	return speech, domain.SideEffect{Status: domain.SideEffectOK}
}

func (uc *InterpretUseCase) publish(ctx context.Context, req domain.InterpretRequest, cmd domain.ActuatorCommand) domain.SideEffect {
	if !req.Publish {
		return domain.SideEffect{Status: domain.SideEffectSkipped}
	}
	if uc.actuator == nil {
		return domain.SideEffect{Status: domain.SideEffectSkipped, Error: "actuator publishing is disabled"}
	}
	if err := uc.actuator.PublishCommand(ctx, cmd); err != nil {
		slog.Warn("actuator_publish_failed", "session_id", req.SessionID, "angle", cmd.Angle, "error", err)
		return failedEffect(err)
	}
	return domain.SideEffect{Status: domain.SideEffectOK}
}

func failedEffect(err error) domain.SideEffect {
	return domain.SideEffect{
		Status:    domain.SideEffectFailed,
		Error:     err.Error(),
		Temporary: domain.IsKind(err, domain.ErrTemporary),
	}
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
