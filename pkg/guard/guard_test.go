package guard

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuard(t *testing.T, cfg Config) *Guard {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	g, err := New(cfg, nil, logger)
	require.NoError(t, err)
	return g
}

const dirtyText = "...she moaned as Dan thrust harder. He was about to cum when she pulled him closer."

func TestGuard_CleanTextPassesThrough(t *testing.T) {
	g := testGuard(t, Config{})

	calls := 0
	repair := func(ctx context.Context, kept, tail string) (string, error) {
		calls++
		return "should never be called", nil
	}

	text := "He gently stroked her hair and smiled."
	out := g.Apply(context.Background(), text, repair)

	assert.Equal(t, text, out, "clean text must pass through unchanged")
	assert.Zero(t, calls, "repair must not be invoked for clean text")
}

func TestGuard_TrimsAndSplicesRepair(t *testing.T) {
	g := testGuard(t, Config{})

	var gotKept, gotTail string
	repair := func(ctx context.Context, kept, tail string) (string, error) {
		gotKept, gotTail = kept, tail
		return "He pulled back, breathing hard, and turned all his attention to her pleasure instead.", nil
	}

	out := g.Apply(context.Background(), dirtyText, repair)

	assert.NotContains(t, out, "about to cum")
	assert.True(t, strings.HasPrefix(out, "...she moaned as Dan thrust harder"), "output = %q", out)
	assert.Contains(t, out, "her pleasure instead")
	assert.Contains(t, gotKept, "thrust harder")
	assert.NotEmpty(t, gotTail)
}

func TestGuard_NoLeakageEvenWhenRepairEchoesInput(t *testing.T) {
	g := testGuard(t, Config{})

	match := g.Scan(dirtyText)
	require.NotNil(t, match)
	detected := dirtyText[match.Start:match.End]

	repair := func(ctx context.Context, kept, tail string) (string, error) {
		// Adversarial repair echoing the full original passage.
		return dirtyText + " And then some more words to pass the length check easily.", nil
	}

	out := g.Apply(context.Background(), dirtyText, repair)
	assert.NotContains(t, out, detected, "detected span must never reach delivered text")
}

func TestGuard_RepairErrorFallsBackToTrimmed(t *testing.T) {
	g := testGuard(t, Config{})

	repair := func(ctx context.Context, kept, tail string) (string, error) {
		return "", errors.New("upstream timeout")
	}

	out := g.Apply(context.Background(), dirtyText, repair)
	assert.Equal(t, "...she moaned as Dan thrust harder…", out)
}

func TestGuard_ShortRepairFallsBackToTrimmed(t *testing.T) {
	g := testGuard(t, Config{})

	repair := func(ctx context.Context, kept, tail string) (string, error) {
		return "Too short.", nil
	}

	out := g.Apply(context.Background(), dirtyText, repair)
	assert.Equal(t, "...she moaned as Dan thrust harder…", out)
}

func TestGuard_NilRepairFallsBackToTrimmed(t *testing.T) {
	g := testGuard(t, Config{})

	out := g.Apply(context.Background(), dirtyText, nil)
	assert.Equal(t, "...she moaned as Dan thrust harder…", out)
}

func TestGuard_MatchInFirstSentenceDeliversRepairAlone(t *testing.T) {
	g := testGuard(t, Config{})

	repaired := "She smiled and guided him back down, setting a slower rhythm that kept everything simmering."
	repair := func(ctx context.Context, kept, tail string) (string, error) {
		assert.Empty(t, kept)
		assert.Empty(t, tail)
		return repaired, nil
	}

	out := g.Apply(context.Background(), "He came almost immediately, gasping her name.", repair)
	assert.Equal(t, repaired, out)
}

func TestGuard_RescanRepair(t *testing.T) {
	g := testGuard(t, Config{RescanRepair: true})

	repair := func(ctx context.Context, kept, tail string) (string, error) {
		// A fresh forbidden event, not echoing the original span.
		return "She wrapped her legs around him tightly. Moments later he climaxed without warning.", nil
	}

	out := g.Apply(context.Background(), dirtyText, repair)
	assert.NotContains(t, out, "climaxed")
	assert.Contains(t, out, "thrust harder")
}

func TestGuard_PrecumDoesNotTrigger(t *testing.T) {
	g := testGuard(t, Config{})

	calls := 0
	repair := func(ctx context.Context, kept, tail string) (string, error) {
		calls++
		return "", nil
	}

	text := "A bead of pre-cum glistened as he slowed his hips, teasing her."
	out := g.Apply(context.Background(), text, repair)

	assert.Equal(t, text, out)
	assert.Zero(t, calls)
}

func TestFileAuditLog_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge_triggers.log")
	audit := NewFileAuditLog(path)

	entry := NewTriggerLogEntry(dirtyText, 36, 52)
	require.NoError(t, audit.Record(entry))
	require.NoError(t, audit.Record(entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Equal(t, 2, strings.Count(content, "TRIGGER:"), "records must append, not overwrite")
	assert.Contains(t, content, "Context: ...")
	assert.Contains(t, content, strings.Repeat("=", 80))
}

func TestNewTriggerLogEntry_ContextBounds(t *testing.T) {
	text := "short he came text"
	match := strings.Index(text, "he came")
	entry := NewTriggerLogEntry(text, match, match+len("he came"))

	assert.Equal(t, "he came", entry.Trigger)
	assert.Equal(t, "short", entry.ContextBefore)
	assert.Equal(t, "text", entry.ContextAfter)
}

func TestNewTriggerLogEntry_MultibyteContext(t *testing.T) {
	// Pad both sides with three-byte runes so the 50-byte context radius
	// lands mid-rune in each direction.
	pad := strings.Repeat("…", 20)
	trigger := "Dan came"
	text := pad + trigger + pad
	start := len(pad)
	entry := NewTriggerLogEntry(text, start, start+len(trigger))

	assert.Equal(t, trigger, entry.Trigger)
	assert.True(t, utf8.ValidString(entry.ContextBefore), "before context = %q", entry.ContextBefore)
	assert.True(t, utf8.ValidString(entry.ContextAfter), "after context = %q", entry.ContextAfter)
	assert.True(t, utf8.ValidString(entry.FullContext()))
}

func TestGuard_AuditFailureDoesNotAbort(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	// Point the audit log at an unwritable path.
	g, err := New(Config{}, NewFileAuditLog(filepath.Join(t.TempDir(), "missing", "deep", "audit.log")), logger)
	require.NoError(t, err)

	out := g.Apply(context.Background(), dirtyText, nil)
	assert.Equal(t, "...she moaned as Dan thrust harder…", out)
}
