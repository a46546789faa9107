// Package llmjson parses JSON emitted by language models, tolerating markdown code fences
// and raw control characters inside string literals.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed wraps every parse failure returned by Parse.
var ErrMalformed = errors.New("failed to parse model output as JSON")

var fenceStripper = strings.NewReplacer("```json", "", "```", "")

// StripFences removes every ```json and ``` marker and trims surrounding whitespace.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceStripper.Replace(raw))
}

// EscapeControlChars rewrites raw control characters (0x00-0x1F, 0x7F) that appear inside
// JSON string literals into their escaped form. Bytes outside string literals are left as is.
func EscapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Parse decodes model output into a generic JSON value. Numbers decode as float64.
// Structural errors are not repaired; the returned error names the first parse failure.
func Parse(raw string) (any, error) {
	text := StripFences(raw)

	var out any
	firstErr := json.Unmarshal([]byte(text), &out)
	if firstErr == nil {
		return out, nil
	}

	out = nil
	if err := json.Unmarshal([]byte(EscapeControlChars(text)), &out); err == nil {
		return out, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrMalformed, firstErr)
}
