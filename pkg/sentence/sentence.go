// Package sentence provides naive sentence splitting and
// boundary-aware truncation for generated prose.
//
// A sentence boundary is a terminator (. ! ? …) followed by whitespace.
// Abbreviations are not special-cased; this is an accepted approximation
// for narrative text.
package sentence

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var boundaryRegex = regexp.MustCompile(`[.!?…]\s+`)

// softPunctuation is stripped from the end of trimmed text before
// an ellipsis is appended.
const softPunctuation = " \n\r\t,.;:!-"

// Span is the half-open byte range of one sentence in the original text.
type Span struct {
	Start int
	End   int
}

// TrimResult is the outcome of truncating text ahead of a match.
type TrimResult struct {
	// Kept is the text up to the end of the last complete sentence
	// strictly before the match, ending in a sentence terminator.
	Kept string
	// Tail is the last few sentences of Kept, used to seed a
	// continuation request. May be empty.
	Tail string
}

// Spans returns the byte ranges of each sentence in text. Whitespace
// between sentences belongs to neither span.
func Spans(text string) []Span {
	if text == "" {
		return nil
	}

	spans := make([]Span, 0, 8)
	start := 0
	for _, m := range boundaryRegex.FindAllStringIndex(text, -1) {
		// The match begins with the terminator rune; the sentence
		// ends just after it.
		_, termLen := utf8.DecodeRuneInString(text[m[0]:])
		spans = append(spans, Span{Start: start, End: m[0] + termLen})
		start = m[1]
	}
	if start < len(text) {
		spans = append(spans, Span{Start: start, End: len(text)})
	}
	return spans
}

// Split returns the sentences of text with inter-sentence whitespace removed.
func Split(text string) []string {
	spans := Spans(text)
	parts := make([]string, len(spans))
	for i, sp := range spans {
		parts[i] = text[sp.Start:sp.End]
	}
	return parts
}

// Locate returns the index of the sentence containing byte offset pos.
// An offset in the whitespace gap between sentences belongs to the
// following sentence. Returns 0 for an empty span list.
func Locate(spans []Span, pos int) int {
	for i, sp := range spans {
		if pos < sp.End {
			return i
		}
	}
	if n := len(spans); n > 0 {
		return n - 1
	}
	return 0
}

// Trim truncates text so that the sentence containing hitStart, and
// everything after it, is discarded. Surviving sentences are joined with
// single spaces; trailing soft punctuation is stripped and an ellipsis is
// appended when the result does not already end in a terminator.
// tailSentences controls how many surviving sentences are echoed in
// TrimResult.Tail.
func Trim(text string, hitStart int, tailSentences int) TrimResult {
	spans := Spans(text)
	hit := Locate(spans, hitStart)

	kept := make([]string, 0, hit)
	for _, sp := range spans[:hit] {
		kept = append(kept, text[sp.Start:sp.End])
	}

	trimmed := strings.TrimRight(strings.Join(kept, " "), softPunctuation)
	if trimmed != "" && !endsInTerminator(trimmed) {
		trimmed += "…"
	}

	tailStart := hit - tailSentences
	if tailStart < 0 {
		tailStart = 0
	}
	tail := strings.TrimSpace(strings.Join(kept[tailStart:], " "))

	return TrimResult{Kept: trimmed, Tail: tail}
}

func endsInTerminator(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}
