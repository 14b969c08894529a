// Package jsonspan pulls the first well-formed JSON object out of free text,
// typically a language model reply that wraps the object in prose.
package jsonspan

import (
	"encoding/json"
	"strings"
)

// FirstSpan returns the first brace-balanced substring that parses as JSON.
// Scanning restarts at the next '{' after every candidate that fails to parse
// or never closes. Braces inside string literals are counted like any other.
func FirstSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := balancedEnd(text, start); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// FirstObject decodes the span found by FirstSpan.
func FirstObject(text string) (map[string]any, bool) {
	var out map[string]any
	if !Decode(text, &out) {
		return nil, false
	}
	return out, true
}

// Decode unmarshals the first object into out. It reports false when no
// object exists or the object does not fit out.
func Decode(text string, out any) bool {
	span, ok := FirstSpan(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(span), out) == nil
}

// balancedEnd returns the index of the '}' that closes the '{' at start.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
