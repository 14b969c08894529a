package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/liturgy"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

const blessingDateLayout = "02 Jan 2006"

type ReflectionUseCase struct {
	table    *liturgy.Table
	readings ports.ReadingRepository
	observer ports.Observer
	now      func() time.Time
}

func NewReflectionUseCase(
	table *liturgy.Table,
	readings ports.ReadingRepository,
	observer ports.Observer,
) *ReflectionUseCase {
	if table == nil {
		table = liturgy.DefaultTable()
	}
	return &ReflectionUseCase{
		table:    table,
		readings: readings,
		observer: observerOrNoop(observer),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ReflectionUseCase) Reflect(ctx context.Context, req domain.ReflectRequest) (*domain.Reflection, error) {
	sessionID := sessionOrNew(req.SessionID)
	color := strings.TrimSpace(req.Color)
	hsv, _ := liturgy.DecodeHSV(color)
	category := liturgy.ClassifyHSV(hsv)
	meditation := uc.table.Lookup(category)
	now := uc.now()

	reflection := &domain.Reflection{
		ReadingID:  uuid.NewString(),
		SessionID:  sessionID,
		Color:      color,
		Category:   category,
		HSV:        hsv,
		Meditation: meditation,
		Blessing:   blessing(now),
		CreatedAt:  now,
	}

	reading := &domain.Reading{
		ID:         reflection.ReadingID,
		SessionID:  sessionID,
		Kind:       domain.ReadingReflection,
		Color:      color,
		Category:   category,
		Text:       meditation.Message,
		Confidence: domain.DefaultConfidence,
		CreatedAt:  now,
	}
	if err := uc.readings.Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("save reflection reading: %w", err)
	}

	uc.observer.ObserveReflection(category)
	return reflection, nil
}

func blessing(at time.Time) string {
	return "Que el Señor te bendiga y te guarde. 📜 " + at.Format(blessingDateLayout)
}

func sessionOrNew(sessionID string) string {
	if id := strings.TrimSpace(sessionID); id != "" {
		return id
	}
	return uuid.NewString()
}
