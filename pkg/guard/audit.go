package guard

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

const contextRadius = 50

// TriggerLogEntry is an append-only audit record of one forbidden-event
// detection. Entries are never mutated after creation.
type TriggerLogEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Trigger       string    `json:"trigger"`
	ContextBefore string    `json:"context_before"`
	ContextAfter  string    `json:"context_after"`
}

// FullContext renders the trigger with its surrounding context on one line.
func (e TriggerLogEntry) FullContext() string {
	return fmt.Sprintf("...%s [%s] %s...", e.ContextBefore, e.Trigger, e.ContextAfter)
}

// NewTriggerLogEntry captures the matched substring of text plus up to 50
// characters of context on each side.
func NewTriggerLogEntry(text string, start, end int) TriggerLogEntry {
	before := runeFloor(text, start-contextRadius)
	after := end + contextRadius
	if after > len(text) {
		after = len(text)
	}
	after = runeFloor(text, after)
	return TriggerLogEntry{
		Timestamp:     time.Now(),
		Trigger:       strings.TrimSpace(text[start:end]),
		ContextBefore: strings.TrimSpace(text[before:start]),
		ContextAfter:  strings.TrimSpace(text[end:after]),
	}
}

// runeFloor backs pos off to the nearest rune boundary at or before it,
// so context slicing never splits a multibyte character.
func runeFloor(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(s) {
		return len(s)
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}

// AuditLog is the sink for trigger records. Implementations must tolerate
// concurrent writers; atomic-append semantics of the underlying storage
// are sufficient.
type AuditLog interface {
	Record(entry TriggerLogEntry) error
}

// FileAuditLog appends human-readable trigger records to a log file.
type FileAuditLog struct {
	path string
}

// NewFileAuditLog creates an audit log writing to path. The file is
// created on first record.
func NewFileAuditLog(path string) *FileAuditLog {
	return &FileAuditLog{path: path}
}

// Record appends one block per trigger:
//
//	[timestamp] TRIGGER: <matched text>
//	  Context: ...<before> [<trigger>] <after>...
//	  ================================================================================
func (l *FileAuditLog) Record(entry TriggerLogEntry) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] TRIGGER: %s\n", entry.Timestamp.Format(time.RFC3339), entry.Trigger))
	sb.WriteString(fmt.Sprintf("  Context: %s\n", entry.FullContext()))
	sb.WriteString("  " + strings.Repeat("=", 80) + "\n")

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}
