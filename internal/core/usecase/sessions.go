package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type SessionQueryUseCase struct {
	readings ports.ReadingRepository
}

func NewSessionQueryUseCase(readings ports.ReadingRepository) *SessionQueryUseCase {
	return &SessionQueryUseCase{readings: readings}
}

func (uc *SessionQueryUseCase) Latest(ctx context.Context, sessionID string) (*domain.Reading, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "latest reading", errors.New("session id is required"))
	}
	return uc.readings.Latest(ctx, id)
}

func (uc *SessionQueryUseCase) List(ctx context.Context, sessionID string, limit int) ([]domain.Reading, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list readings", errors.New("session id is required"))
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return uc.readings.List(ctx, id, limit)
}
