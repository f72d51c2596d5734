package guard

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultSubjects are the trigger subject tokens: the character reference
// whose climax is blocked during edging.
var DefaultSubjects = []string{"Dan", "he", "his", "him"}

// DefaultTriggers is the climax vocabulary, written as regex fragments so
// each entry tolerates tense and inflection. Entries are wrapped in word
// boundaries when the pattern is compiled.
var DefaultTriggers = []string{
	`cum(?:s|ming|med)?`,
	`comes?`,
	`came`,
	`coming`,
	`climax(?:es|ed|ing)?`,
	`orgasm(?:s|ed|ing)?`,
	`ejaculat(?:e|es|ed|ing)`,
	`finish(?:es|ed|ing)?`,
	`release(?:s|d|ing)?`,
	`shoots?`,
	`shooting`,
	`spurt(?:s|ing|ed)?`,
	`explode(?:s|d|ing)?`,
	`unload(?:s|ed|ing)?`,
	`load`,
	`semen`,
	`sperm`,
}

// DefaultExclusions suppress near-miss hits of the trigger vocabulary.
// Text inside an occurrence of one of these terms never matches.
var DefaultExclusions = []string{"precum", "pre-cum"}

// DefaultWindow is the maximum number of characters allowed between the
// subject token and the trigger word, on the same line and sentence.
const DefaultWindow = 120

// Match is the byte span of a forbidden-event hit in the scanned text.
type Match struct {
	Start int
	End   int
}

// Matcher detects a forbidden narrative event: a subject token followed,
// within a bounded window, by a climax trigger word. Exclusions are
// handled at the pattern level — occurrences of exclusion terms are
// masked out before the scan, so a trigger word inside "pre-cum" can
// never produce a match.
type Matcher struct {
	re      *regexp.Regexp
	exclude *regexp.Regexp
}

// MatcherConfig tunes the forbidden-event pattern. Zero-value fields fall
// back to the package defaults so callers can override selectively.
type MatcherConfig struct {
	Subjects   []string
	Triggers   []string
	Exclusions []string
	Window     int
}

// NewMatcher compiles the forbidden-event pattern.
func NewMatcher(cfg MatcherConfig) (*Matcher, error) {
	subjects := cfg.Subjects
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}
	triggers := cfg.Triggers
	if len(triggers) == 0 {
		triggers = DefaultTriggers
	}
	exclusions := cfg.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	quoted := make([]string, len(subjects))
	for i, s := range subjects {
		quoted[i] = regexp.QuoteMeta(s)
	}

	// Subject, then up to window chars on the same line and sentence,
	// then a trigger word.
	pattern := fmt.Sprintf(`(?i)\b(?:%s)\b[^.\n\r]{0,%d}\b(?:%s)\b`,
		strings.Join(quoted, "|"), window, strings.Join(triggers, "|"))

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile forbidden-event pattern: %w", err)
	}

	m := &Matcher{re: re}
	if len(exclusions) > 0 {
		quotedExcl := make([]string, len(exclusions))
		for i, e := range exclusions {
			quotedExcl[i] = regexp.QuoteMeta(e)
		}
		m.exclude, err = regexp.Compile(`(?i)(?:` + strings.Join(quotedExcl, "|") + `)`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile exclusion pattern: %w", err)
		}
	}

	return m, nil
}

// Scan returns the leftmost forbidden-event match in text, or nil.
// Only the first match matters; the caller cuts everything after it.
// Offsets refer to the original text.
func (m *Matcher) Scan(text string) *Match {
	loc := m.re.FindStringIndex(m.mask(text))
	if loc == nil {
		return nil
	}
	return &Match{Start: loc[0], End: loc[1]}
}

// mask replaces exclusion-term occurrences with same-length filler so
// they cannot satisfy the trigger pattern. Byte offsets are preserved.
func (m *Matcher) mask(text string) string {
	if m.exclude == nil {
		return text
	}
	locs := m.exclude.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	b := []byte(text)
	for _, loc := range locs {
		for i := loc[0]; i < loc[1]; i++ {
			b[i] = '#'
		}
	}
	return string(b)
}
