package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/oracion-board/internal/config"
	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/usecase"
	"github.com/kirillkom/oracion-board/internal/infrastructure/repository/memory"
)

type interpretFake struct {
	got domain.InterpretRequest
	err error
}

func (f *interpretFake) Interpret(_ context.Context, req domain.InterpretRequest) (*domain.Interpretation, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Interpretation{
		ReadingID: "r-1",
		SessionID: req.SessionID,
		Mode:      req.Mode,
		Text:      "Una luz sobre el monte.",
		Verdict:   domain.Verdict{Label: domain.LabelAlto, Confidence: 90, Angle: domain.AngleAlto, Extracted: true},
		Publish:   domain.SideEffect{Status: domain.SideEffectSkipped},
	}, nil
}

type moveFake struct {
	err error
}

func (f moveFake) Move(_ context.Context, req domain.MoveRequest) (*domain.ActuatorCommand, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ActuatorCommand{CommandID: "c-1", SessionID: req.SessionID, Angle: req.Angle, Source: domain.SourceManual}, nil
}

type drawingStoreFake map[string]string

func (f drawingStoreFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f[key] = string(raw)
	return nil
}

func (f drawingStoreFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrDrawingNotFound, "open drawing", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type testDeps struct {
	interpret *interpretFake
	move      moveFake
	repo      *memory.ReadingRepository
	drawings  drawingStoreFake
}

// newTestHandler wires real reflection and session use cases over the
// in-memory repository with fakes for the model-backed flows.
func newTestHandler(cfg config.Config) (http.Handler, *testDeps) {
	deps := &testDeps{interpret: &interpretFake{}, repo: memory.NewReadingRepository()}
	return newTestHandlerWith(cfg, deps), deps
}

func newTestHandlerWith(cfg config.Config, deps *testDeps) http.Handler {
	if deps.repo == nil {
		deps.repo = memory.NewReadingRepository()
	}
	if deps.interpret == nil {
		deps.interpret = &interpretFake{}
	}
	if deps.drawings == nil {
		deps.drawings = drawingStoreFake{}
	}
	return NewRouter(
		cfg,
		usecase.NewReflectionUseCase(nil, deps.repo, nil),
		deps.interpret,
		deps.move,
		usecase.NewSessionQueryUseCase(deps.repo),
		usecase.NewDrawingQueryUseCase(deps.drawings),
		nil,
	).Handler()
}

func seedReading(repo *memory.ReadingRepository, sessionID, id string, at time.Time) {
	_ = repo.Save(context.Background(), &domain.Reading{ID: id, SessionID: sessionID, Kind: domain.ReadingReflection, CreatedAt: at})
}
