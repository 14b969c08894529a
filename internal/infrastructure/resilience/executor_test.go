package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func fastRetries() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(fastRetries())

	attempts := 0
	err := exec.Execute(context.Background(), "ollama.generate", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return domain.WrapError(domain.ErrTemporary, "ollama.generate", errors.New("503"))
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastRetries())

	attempts := 0
	errPermanent := errors.New("model not found")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, nil)
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteStopsAfterMaxAttempts(t *testing.T) {
	exec := NewExecutor(fastRetries())

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return domain.WrapError(domain.ErrTemporary, "op", errors.New("busy"))
	}, nil)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
		OnStateChange: func(op, from, to string) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, op+":"+from+"->"+to)
		},
	})

	errDown := errors.New("connection refused")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, nil)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected broker error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("open circuit should surface as temporary, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 1 || transitions[0] != "nats.publish:closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
}

func TestInvalidInputDoesNotTripBreaker(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:   1,
		BreakerEnabled:     true,
		BreakerMinRequests: 1,
	})

	for i := 0; i < 5; i++ {
		err := exec.Execute(context.Background(), "gemini.describe", func(context.Context) error {
			return domain.WrapError(domain.ErrInvalidInput, "gemini.describe", errors.New("bad image"))
		}, nil)
		if IsCircuitOpen(err) {
			t.Fatalf("breaker opened on caller errors at iteration %d", i)
		}
	}
}

func TestDoReturnsValue(t *testing.T) {
	exec := NewExecutor(fastRetries())
	calls := 0
	got, err := Do(context.Background(), exec, "op", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", domain.WrapError(domain.ErrTemporary, "op", errors.New("flaky"))
		}
		return "paz", nil
	}, nil)
	if err != nil || got != "paz" {
		t.Fatalf("Do() = %q, %v", got, err)
	}

	got, err = Do[string](context.Background(), nil, "op", func(context.Context) (string, error) {
		return "direct", nil
	}, nil)
	if err != nil || got != "direct" {
		t.Fatalf("Do() without executor = %q, %v", got, err)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := Config{
		RetryInitialBackoff: 10 * time.Millisecond,
		RetryMaxBackoff:     25 * time.Millisecond,
		RetryMultiplier:     2,
	}.normalize()
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}
	for i, w := range want {
		if got := cfg.backoffAt(i + 1); got != w {
			t.Fatalf("backoffAt(%d) = %s, want %s", i+1, got, w)
		}
	}
}
