// Package extract recovers a structured result from raw model output.
//
// The model is asked for a single JSON object but its output is free text:
// the object may be wrapped in commentary or code fences, or be malformed.
// Extraction takes the widest {...} span and decodes it strictly. When that
// fails the raw text itself becomes the spoken answer.
//
// A decoded object is returned as-is. Its shape is not checked against the
// schema the prompt asked for; the model is trusted on that point.
package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/shelfd/internal/message"
)

// MaxFallbackRunes bounds the spoken text of a fallback result.
const MaxFallbackRunes = 200

// Extract returns the structured result contained in raw, or the fallback
// result when none can be decoded. The result always carries a non-empty
// spoken_text on the fallback path.
func Extract(raw string, category message.Category) *message.Result {
	if span, ok := widestSpan(raw); ok {
		if fields, err := decodeObject(span); err == nil {
			return message.NewStructured(fields)
		}
	}
	return Fallback(raw, category)
}

// Fallback builds the degraded result from raw text: trimmed, truncated to
// MaxFallbackRunes, or the category's apology when nothing is left.
func Fallback(raw string, category message.Category) *message.Result {
	text := Truncate(strings.TrimSpace(raw), MaxFallbackRunes)
	if text == "" {
		text = category.Apology()
	}
	return message.NewUnstructured(category, text)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// widestSpan returns the text from the first '{' to the last '}'.
func widestSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// decodeObject decodes span as exactly one JSON object. Numbers are kept
// as json.Number so they re-encode exactly as the model wrote them.
func decodeObject(span string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after object")
	}
	if fields == nil {
		return nil, errors.New("not an object")
	}
	return fields, nil
}
