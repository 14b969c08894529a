package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

// ReadingRepository keeps readings in process memory. Used when no
// database DSN is configured; history is lost on restart.
type ReadingRepository struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Reading
}

func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{sessions: make(map[string][]domain.Reading)}
}

func (r *ReadingRepository) Save(_ context.Context, reading *domain.Reading) error {
	if reading == nil {
		return domain.WrapError(domain.ErrInvalidInput, "save reading", fmt.Errorf("reading is nil"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.sessions[reading.SessionID], *reading)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	r.sessions[reading.SessionID] = list
	return nil
}

func (r *ReadingRepository) Latest(_ context.Context, sessionID string) (*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.sessions[sessionID]
	if len(list) == 0 {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "latest reading", fmt.Errorf("session %s", sessionID))
	}
	latest := list[len(list)-1]
	return &latest, nil
}

// List returns up to limit readings, newest first.
func (r *ReadingRepository) List(_ context.Context, sessionID string, limit int) ([]domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.sessions[sessionID]
	if len(list) == 0 {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "list readings", fmt.Errorf("session %s", sessionID))
	}
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]domain.Reading, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
