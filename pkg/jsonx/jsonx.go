// Package jsonx decodes JSON emitted by a language model. Model output is
// untrusted: it may be wrapped in Markdown fences, embedded in prose, or
// truncated. Decoding is total — it returns an error, never panics.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var braceRegex = regexp.MustCompile(`(?s)\{.*\}`)

// Decode parses model output into v. It tries, in order:
//  1. stripping Markdown code-fence wrappers and parsing directly,
//  2. locating the outermost {...} span in the text and parsing that.
//
// Returns an error when no parse succeeds; v may be partially populated
// and must be discarded by the caller on error.
func Decode(raw string, v any) error {
	cleaned := StripFences(raw)

	directErr := json.Unmarshal([]byte(cleaned), v)
	if directErr == nil {
		return nil
	}

	if span := braceRegex.FindString(cleaned); span != "" {
		if err := json.Unmarshal([]byte(span), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no parseable JSON object in model output: %w", directErr)
}

// StripFences removes a Markdown code-fence wrapper from s, if present.
// Handles ```json, bare ``` and trailing fences, tolerating surrounding
// whitespace.
func StripFences(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```")
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
