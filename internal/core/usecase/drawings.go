package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

type DrawingQueryUseCase struct {
	drawings ports.DrawingStorage
}

func NewDrawingQueryUseCase(drawings ports.DrawingStorage) *DrawingQueryUseCase {
	return &DrawingQueryUseCase{drawings: drawings}
}

// OpenDrawing returns the stored canvas for a reading's drawing_key. The
// caller closes the reader.
func (uc *DrawingQueryUseCase) OpenDrawing(ctx context.Context, key string) (io.ReadCloser, string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "open drawing", errors.New("drawing key is required"))
	}
	mimeType, ok := mimeForKey(key)
	if !ok {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "open drawing", fmt.Errorf("unsupported drawing key %q", key))
	}
	rc, err := uc.drawings.Open(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("open drawing: %w", err)
	}
	return rc, mimeType, nil
}

// mimeForKey inverts extensionFor.
func mimeForKey(key string) (string, bool) {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png", true
	case ".jpg":
		return "image/jpeg", true
	case ".webp":
		return "image/webp", true
	case ".gif":
		return "image/gif", true
	default:
		return "", false
	}
}
