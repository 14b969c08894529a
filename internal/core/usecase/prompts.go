package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

const maxNoteRunes = 500

func buildVisionPrompt(mode domain.InterpretMode, note string) string {
	note = truncateRunes(strings.TrimSpace(note), maxNoteRunes)

	var b strings.Builder
	switch mode {
	case domain.ModeRecognize:
		b.WriteString(`Describe en español, en una o dos frases, qué representa este dibujo.
Si no es reconocible, dilo directamente.`)
	default:
		b.WriteString(`Eres un guía espiritual místico. Observa este dibujo hecho en oración
y ofrece en español una interpretación breve (máximo 5 frases), serena y esperanzadora,
inspirada en los símbolos, colores y trazos que veas.`)
	}
	if note != "" {
		b.WriteString("\n\nIntención del usuario:\n")
		b.WriteString(note)
	}
	return b.String()
}

func buildVerdictPrompt(mode domain.InterpretMode, interpretation string) string {
	subject := "la interpretación mística"
	if mode == domain.ModeRecognize {
		subject = "el reconocimiento del dibujo"
	}
	return fmt.Sprintf(`Evalúa qué tan segura es %s siguiente.
Devuelve SOLO un objeto JSON con las claves:
label ("ALTO", "MEDIO" o "BAJO"), confidence (número de 0 a 100), reason (texto breve).

Texto:
%s
`, subject, interpretation)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
