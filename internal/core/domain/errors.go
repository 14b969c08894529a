package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrDrawingNotFound = errors.New("drawing not found")
	ErrTemporary       = errors.New("temporary failure")
	ErrUnavailable     = errors.New("collaborator unavailable")
	ErrNoJSONObject    = errors.New("no json object found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
