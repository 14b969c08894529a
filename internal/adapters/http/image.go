package httpadapter

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

// decodeImage accepts raw base64 or a canvas data URL
// ("data:image/png;base64,....").
func decodeImage(raw string) (domain.Image, error) {
	raw = strings.TrimSpace(raw)
	var mimeType string
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return domain.Image{}, domain.WrapError(domain.ErrInvalidInput, "decode image", errors.New("malformed data url"))
		}
		params := strings.Split(meta, ";")
		if params[len(params)-1] != "base64" {
			return domain.Image{}, domain.WrapError(domain.ErrInvalidInput, "decode image", errors.New("data url must be base64 encoded"))
		}
		mimeType = strings.ToLower(strings.TrimSpace(params[0]))
		raw = payload
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// Some clients strip padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
	}
	if err != nil {
		return domain.Image{}, domain.WrapError(domain.ErrInvalidInput, "decode image", fmt.Errorf("invalid base64: %w", err))
	}
	return domain.Image{MimeType: mimeType, Data: data}, nil
}
