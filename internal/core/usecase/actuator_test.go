package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func TestMovePublishesAndRecords(t *testing.T) {
	pub := &publisherFake{}
	repo := &readingRepoFake{}
	uc := NewActuatorUseCase(pub, repo, nil)

	cmd, err := uc.Move(context.Background(), domain.MoveRequest{SessionID: "s-9", Angle: 135})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if cmd.Angle != 135 || cmd.Source != domain.SourceManual || cmd.CommandID == "" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if len(pub.cmds) != 1 || pub.cmds[0].CommandID != cmd.CommandID {
		t.Fatalf("expected published command")
	}
	latest, err := repo.Latest(context.Background(), "s-9")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Kind != domain.ReadingManual || latest.Angle == nil || *latest.Angle != 135 || !latest.Published {
		t.Fatalf("unexpected reading %+v", latest)
	}
}

func TestMoveRejectsOutOfRangeAngles(t *testing.T) {
	uc := NewActuatorUseCase(&publisherFake{}, &readingRepoFake{}, nil)
	for _, angle := range []int{-1, 181, 1000} {
		if _, err := uc.Move(context.Background(), domain.MoveRequest{Angle: angle}); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("angle %d: expected ErrInvalidInput, got %v", angle, err)
		}
	}
}

func TestMoveWithoutPublisherIsUnavailable(t *testing.T) {
	uc := NewActuatorUseCase(nil, &readingRepoFake{}, nil)
	if _, err := uc.Move(context.Background(), domain.MoveRequest{Angle: 90}); !domain.IsKind(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMovePublishErrorIsNotRecorded(t *testing.T) {
	repo := &readingRepoFake{}
	uc := NewActuatorUseCase(&publisherFake{err: errors.New("broker down")}, repo, nil)
	if _, err := uc.Move(context.Background(), domain.MoveRequest{Angle: 90}); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.saved) != 0 {
		t.Fatalf("expected no saved reading")
	}
}
