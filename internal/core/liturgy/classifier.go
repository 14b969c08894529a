// Package liturgy buckets stroke colours into liturgical categories and
// holds the meditation text shown for each of them.
package liturgy

import (
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

var hexColorPattern = regexp.MustCompile(`^#?([0-9A-Fa-f]{6})$`)

// fallbackHSV is what malformed input decodes to: white at full brightness.
var fallbackHSV = domain.HSV{Hue: 0, Saturation: 0, Value: 1}

// DecodeHSV converts #RRGGBB (the leading # is optional) to HSV.
// The bool is false when the input was malformed and the white fallback was used.
func DecodeHSV(hexColor string) (domain.HSV, bool) {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(hexColor))
	if m == nil {
		return fallbackHSV, false
	}
	c, err := colorful.Hex("#" + m[1])
	if err != nil {
		return fallbackHSV, false
	}
	r, g, b := c.RGB255()
	h, s, v := hsvFraction(float64(r)/255.0, float64(g)/255.0, float64(b)/255.0)
	return domain.HSV{
		Hue:        wholeDegrees(h * 360),
		Saturation: s,
		Value:      v,
	}, true
}

// hsvFraction returns hue as a fraction of a turn in [0,1): sextant offset,
// divided by 6, floor-mod 1. Channels are in [0,1].
func hsvFraction(r, g, b float64) (h, s, v float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}
	rangec := maxc - minc
	s = rangec / maxc
	rc := (maxc - r) / rangec
	gc := (maxc - g) / rangec
	bc := (maxc - b) / rangec
	switch {
	case r == maxc:
		h = bc - gc
	case g == maxc:
		h = 2.0 + rc - bc
	default:
		h = 4.0 + gc - rc
	}
	h = math.Mod(h/6.0, 1.0)
	if h < 0 {
		h += 1.0
	}
	return h, s, v
}

// wholeDegrees truncates hue to an integer degree in [0,359].
func wholeDegrees(h float64) int {
	deg := int(h) % 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Classify maps a hex colour to its category. It never fails: malformed
// input is treated as white.
func Classify(hexColor string) domain.Category {
	hsv, _ := DecodeHSV(hexColor)
	return ClassifyHSV(hsv)
}

// ClassifyHSV applies the category rules in priority order. Luminosity gates
// run before the hue bands, and the band order settles the overlaps near
// the red/magenta boundary.
func ClassifyHSV(c domain.HSV) domain.Category {
	h, s, v := c.Hue, c.Saturation, c.Value

	switch {
	case v > 0.92 && s < 0.12:
		return domain.CategoryBlanco
	case v < 0.14:
		return domain.CategoryNegro
	case h >= 40 && h <= 60 && v > 0.75:
		return domain.CategoryDorado
	case h >= 75 && h <= 170:
		return domain.CategoryVerde
	case h <= 15 || h >= 345:
		return domain.CategoryRojo
	case h >= 260 && h <= 305:
		return domain.CategoryMorado
	case h > 305 && h < 345 && v > 0.7:
		return domain.CategoryRosado
	case h >= 185 && h <= 250:
		return domain.CategoryAzul
	default:
		return domain.CategoryNeutro
	}
}
