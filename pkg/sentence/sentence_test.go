package sentence

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentences",
			input:    "She smiled. He laughed. They danced.",
			expected: []string{"She smiled.", "He laughed.", "They danced."},
		},
		{
			name:     "mixed terminators",
			input:    "Really? Yes! And then… it happened.",
			expected: []string{"Really?", "Yes!", "And then… it happened."},
		},
		{
			name:     "no trailing terminator",
			input:    "First one. And a trailing fragment",
			expected: []string{"First one.", "And a trailing fragment"},
		},
		{
			name:     "newline separated",
			input:    "One ends here.\nTwo starts here.",
			expected: []string{"One ends here.", "Two starts here."},
		},
		{
			name:     "single sentence",
			input:    "Just one sentence without a break",
			expected: []string{"Just one sentence without a break"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := Split(tt.input)
			if len(parts) != len(tt.expected) {
				t.Fatalf("Split() returned %d parts, want %d: %v", len(parts), len(tt.expected), parts)
			}
			for i := range parts {
				if parts[i] != tt.expected[i] {
					t.Errorf("Split()[%d] = %q, want %q", i, parts[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSpans_CoverOriginalText(t *testing.T) {
	text := "She leaned closer. He held his breath! And waited…"
	spans := Spans(text)

	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	for i, sp := range spans {
		if sp.Start >= sp.End {
			t.Errorf("span %d is empty or inverted: %+v", i, sp)
		}
		if sp.End > len(text) {
			t.Errorf("span %d exceeds text length: %+v", i, sp)
		}
	}
	if got := text[spans[1].Start:spans[1].End]; got != "He held his breath!" {
		t.Errorf("middle span = %q", got)
	}
}

func TestLocate(t *testing.T) {
	text := "First sentence. Second sentence. Third."
	spans := Spans(text)

	tests := []struct {
		name     string
		pos      int
		expected int
	}{
		{"start of text", 0, 0},
		{"inside first", 5, 0},
		{"terminator of first", 14, 0},
		{"inside second", strings.Index(text, "Second"), 1},
		{"gap before second belongs to second", 15, 1},
		{"inside third", strings.Index(text, "Third"), 2},
		{"past the end clamps to last", len(text) + 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(spans, tt.pos); got != tt.expected {
				t.Errorf("Locate(%d) = %d, want %d", tt.pos, got, tt.expected)
			}
		})
	}
}

func TestTrim_CutsBeforeMatchedSentence(t *testing.T) {
	text := "...she moaned as Dan thrust harder. He was about to cum when she pulled him closer."
	hit := strings.Index(text, "cum")

	result := Trim(text, hit, 2)

	if strings.Contains(result.Kept, "cum") {
		t.Errorf("kept text contains forbidden content: %q", result.Kept)
	}
	if !strings.HasPrefix(result.Kept, "...she moaned as Dan thrust harder") {
		t.Errorf("kept text lost earlier content: %q", result.Kept)
	}
	if !strings.HasSuffix(result.Kept, "…") {
		t.Errorf("kept text should end in ellipsis after soft-punctuation strip: %q", result.Kept)
	}
	if result.Tail == "" {
		t.Error("tail should echo the surviving sentence")
	}
}

func TestTrim_PrefixProperty(t *testing.T) {
	// Kept text must never contain content at or after the matched sentence.
	text := "One here. Two here. Three here. Four here."
	for _, word := range []string{"Two", "Three", "Four"} {
		hit := strings.Index(text, word)
		result := Trim(text, hit, 2)
		if strings.Contains(result.Kept, word) {
			t.Errorf("Trim at %q kept the matched sentence: %q", word, result.Kept)
		}
		normalized := strings.TrimRight(result.Kept, "…")
		if normalized != "" && !strings.HasPrefix(text, normalized) {
			t.Errorf("kept text %q is not a prefix of the original", result.Kept)
		}
	}
}

func TestTrim_MatchInFirstSentence(t *testing.T) {
	text := "He came right away. More text follows."
	result := Trim(text, 3, 2)

	if result.Kept != "" {
		t.Errorf("expected empty kept text when match is in the first sentence, got %q", result.Kept)
	}
	if result.Tail != "" {
		t.Errorf("expected empty tail, got %q", result.Tail)
	}
}

func TestTrim_TailWindow(t *testing.T) {
	text := "Alpha one. Beta two. Gamma three. Delta four."
	hit := strings.Index(text, "Delta")

	result := Trim(text, hit, 2)
	if result.Tail != "Beta two. Gamma three." {
		t.Errorf("tail = %q, want last two surviving sentences", result.Tail)
	}

	single := Trim(text, hit, 1)
	if single.Tail != "Gamma three." {
		t.Errorf("tail = %q, want only the last surviving sentence", single.Tail)
	}
}

func TestTrim_QuestionMarkNotDoubleTerminated(t *testing.T) {
	text := "Would she stay? He wondered about it. Then the forbidden part."
	hit := strings.Index(text, "He wondered")

	result := Trim(text, hit, 2)
	if result.Kept != "Would she stay?" {
		t.Errorf("kept = %q, want question left intact without ellipsis", result.Kept)
	}
}
