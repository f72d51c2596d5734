// Package guard keeps a forbidden narrative event out of delivered text.
// When a generated passage depicts the blocked event, the guard rolls the
// passage back to the last safe sentence boundary, records the trigger,
// and asks the caller's repair function for a redirected continuation.
package guard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/philfry41/grok-playground/pkg/sentence"
)

const (
	DefaultTailSentences  = 2
	DefaultMinRepairWords = 10
)

// RepairFunc wraps a single generation call that continues seamlessly from
// kept/tail while steering away from the forbidden event. It should use a
// reduced token budget relative to the original generation.
type RepairFunc func(ctx context.Context, kept, tail string) (string, error)

// Config tunes guard behavior beyond the match pattern.
type Config struct {
	Matcher MatcherConfig

	// TailSentences is how many surviving sentences seed the repair
	// request. Default 2.
	TailSentences int

	// MinRepairWords rejects suspiciously short repair output.
	// Default 10.
	MinRepairWords int

	// RescanRepair re-scans the repair output for a fresh forbidden
	// event before splicing. The reference behavior does not re-scan;
	// this is opt-in.
	RescanRepair bool
}

// Guard is the edge-detection-and-repair pipeline.
type Guard struct {
	matcher        *Matcher
	audit          AuditLog
	logger         *slog.Logger
	tailSentences  int
	minRepairWords int
	rescanRepair   bool
}

// New builds a Guard. audit may be nil (detections are then only logged).
func New(cfg Config, audit AuditLog, logger *slog.Logger) (*Guard, error) {
	matcher, err := NewMatcher(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	tail := cfg.TailSentences
	if tail <= 0 {
		tail = DefaultTailSentences
	}
	minWords := cfg.MinRepairWords
	if minWords <= 0 {
		minWords = DefaultMinRepairWords
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Guard{
		matcher:        matcher,
		audit:          audit,
		logger:         logger,
		tailSentences:  tail,
		minRepairWords: minWords,
		rescanRepair:   cfg.RescanRepair,
	}, nil
}

// Scan exposes the underlying matcher.
func (g *Guard) Scan(text string) *Match {
	return g.matcher.Scan(text)
}

// Trim truncates text ahead of the sentence containing matchStart.
func (g *Guard) Trim(text string, matchStart int) sentence.TrimResult {
	return sentence.Trim(text, matchStart, g.tailSentences)
}

// Apply is the orchestrating entry point. Clean text passes through
// untouched with zero repair calls. On a detection the passage is trimmed
// to the last safe sentence, the trigger is recorded, and repair output is
// spliced on — falling back to the trimmed text alone whenever the repair
// fails, is too short, or echoes the detected span.
func (g *Guard) Apply(ctx context.Context, text string, repair RepairFunc) string {
	match := g.matcher.Scan(text)
	if match == nil {
		return text
	}

	g.logTrigger(text, match)

	result := g.Trim(text, match.Start)
	matched := text[match.Start:match.End]

	if repair == nil {
		return result.Kept
	}

	repaired, err := repair(ctx, result.Kept, result.Tail)
	if err != nil {
		g.logger.Warn("repair call failed, keeping trimmed text", "error", err)
		return result.Kept
	}

	repaired = strings.TrimSpace(repaired)
	if wordCount(repaired) < g.minRepairWords {
		g.logger.Warn("repair output too short, keeping trimmed text",
			"words", wordCount(repaired))
		return result.Kept
	}

	// The delivered text must never contain the detected span, no matter
	// what the repair call returned.
	if strings.Contains(repaired, matched) {
		g.logger.Warn("repair output echoed the detected span, keeping trimmed text")
		return result.Kept
	}

	if g.rescanRepair {
		if rm := g.matcher.Scan(repaired); rm != nil {
			g.logTrigger(repaired, rm)
			repaired = g.Trim(repaired, rm.Start).Kept
			if repaired == "" {
				return result.Kept
			}
		}
	}

	if result.Kept == "" {
		return repaired
	}
	return result.Kept + " " + repaired
}

// logTrigger records the detection. Audit failures are reported and
// swallowed; they never abort the pipeline.
func (g *Guard) logTrigger(text string, match *Match) TriggerLogEntry {
	entry := NewTriggerLogEntry(text, match.Start, match.End)
	g.logger.Info("forbidden event detected",
		"trigger", entry.Trigger,
		"context", entry.FullContext())
	if g.audit != nil {
		if err := g.audit.Record(entry); err != nil {
			g.logger.Warn("failed to record trigger in audit log", "error", err)
		}
	}
	return entry
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
