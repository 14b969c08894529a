// Package verdict turns a model's free-text confidence assessment into a
// normalised label, a clamped confidence and a servo angle.
package verdict

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/jsonspan"
)

// NormalizeLabel matches by substring on the upper-cased input. ALTO wins over
// BAJO when both appear; everything else is MEDIO.
func NormalizeLabel(raw string) domain.Label {
	up := strings.ToUpper(raw)
	switch {
	case strings.Contains(up, string(domain.LabelAlto)):
		return domain.LabelAlto
	case strings.Contains(up, string(domain.LabelBajo)):
		return domain.LabelBajo
	default:
		return domain.LabelMedio
	}
}

func MapAngle(label domain.Label) int {
	switch label {
	case domain.LabelAlto:
		return domain.AngleAlto
	case domain.LabelBajo:
		return domain.AngleBajo
	default:
		return domain.AngleMedio
	}
}

// ClampConfidence coerces value to an integer percentage in [0,100].
// Values that cannot be read as a finite number yield the default of 50.
func ClampConfidence(value any) int {
	n, ok := toFloat(value)
	if !ok {
		return domain.DefaultConfidence
	}
	// Clamp before converting: float to int is undefined outside int range.
	return int(math.Trunc(math.Max(0, math.Min(100, n))))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		value = strings.TrimSpace(v)
	case json.Number:
		value = v.String()
	}
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Parse extracts the verdict object from a model response. When no JSON
// object can be found the default MEDIO/50 verdict is returned.
func Parse(text string) domain.Verdict {
	obj, ok := jsonspan.FirstObject(text)
	if !ok {
		return Default()
	}
	label := NormalizeLabel(stringField(obj, "label"))
	return domain.Verdict{
		Label:      label,
		Confidence: ClampConfidence(obj["confidence"]),
		Reason:     strings.TrimSpace(stringField(obj, "reason")),
		Angle:      MapAngle(label),
		Extracted:  true,
	}
}

func Default() domain.Verdict {
	return domain.Verdict{
		Label:      domain.LabelMedio,
		Confidence: domain.DefaultConfidence,
		Angle:      domain.AngleMedio,
	}
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}
