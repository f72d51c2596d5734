package scene

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/jsonx"
)

const (
	// Extraction is a parsing task, not creative generation: sampling is
	// near-deterministic and the budget is sized to avoid truncated JSON.
	DefaultExtractionTemperature = 0.1
	DefaultExtractionMaxTokens   = 800

	// DefaultContextTurns is how many recent conversation turns the
	// extraction call sees.
	DefaultContextTurns = 4
)

// extractionPromptTemplate asks the model for the scene state as a bare
// JSON object. The shape here is the contract the recovery parser accepts.
const extractionPromptTemplate = `You are a detailed story state analyzer for erotic fiction. Extract the current story state from this conversation and return ONLY a JSON object.

CONVERSATION CONTEXT:
%s

EXTRACT AND RETURN THIS JSON STRUCTURE:
{
    "characters": {
        "character_name": {
            "clothing": "detailed clothing state (what's on/off, partially removed, etc.)",
            "position": "specific body position and orientation",
            "mood": "emotional/arousal state",
            "physical_state": "body condition (sweating, trembling, etc.)",
            "body_parts_exposed": ["specific body parts that are visible/touched"],
            "interactions": "what they're doing with their hands/body"
        }
    },
    "location": "current location/setting with specific details",
    "positions": "detailed body positions and spatial relationships",
    "physical_contact": "specific level and type of physical contact",
    "mood_atmosphere": "overall mood/atmosphere with tension level",
    "key_objects": ["important objects in the scene and their state"],
    "story_progress": ["key plot points and milestones reached"],
    "arousal_levels": {
        "character_name": "arousal level (low/medium/high/peak)"
    },
    "clothing_removed": ["specific items of clothing that have been removed"],
    "body_positions": {
        "character_name": "detailed body position and what they're doing"
    }
}

RULES:
- Only include characters that are actively present in the scene
- Be VERY specific about clothing states (e.g., "shirt unbuttoned", "completely naked")
- Be VERY specific about positions (e.g., "sitting on edge of bed", "kneeling", "lying on back")
- Track specific body parts that are exposed, touched, or involved in actions
- Track arousal levels for each character
- Note any clothing items that have been removed and where they are
- Use "unknown" for any state you cannot determine
- Return ONLY the JSON object, no other text`

// ExtractionError reports model output that could not be parsed as scene
// state, even after fence-stripping and brace-scan recovery. It is always
// recovered locally: the running state is left unchanged.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("unparseable state extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Generator is the minimal generation surface the tracker consumes.
type Generator interface {
	Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error)
}

// Tracker keeps a structured summary of what is physically and
// emotionally true in the scene, derived from free-text narrative via an
// extraction call, and renders it back into a continuity directive.
//
// Callers must serialize Extract calls for a given Tracker; the merge is
// not safe for concurrent writers.
type Tracker struct {
	state       *SceneState
	llm         Generator
	logger      *slog.Logger
	temperature float64
	maxTokens   int
}

// NewTracker creates a tracker with a fresh empty state.
func NewTracker(llm Generator, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		state:       NewSceneState(),
		llm:         llm,
		logger:      logger,
		temperature: DefaultExtractionTemperature,
		maxTokens:   DefaultExtractionMaxTokens,
	}
}

// WithState replaces the running state, e.g. one loaded from persistence.
// Returns the Tracker for chaining.
func (t *Tracker) WithState(s *SceneState) *Tracker {
	if s != nil {
		t.state = s
	}
	return t
}

// State returns the running state object.
func (t *Tracker) State() *SceneState { return t.state }

// Reset returns the running state to defaults, e.g. on "start new scene".
func (t *Tracker) Reset() { t.state.Reset() }

// Extract issues one extraction call against the given conversation turns
// and merges the result into the running state. The model's output is
// untrusted input: on transport failure or unparseable output the state
// is returned unchanged alongside the error. Extract never panics and
// never loses state.
func (t *Tracker) Extract(ctx context.Context, turns []chat.ChatMessage) (*SceneState, error) {
	if len(turns) > DefaultContextTurns {
		turns = turns[len(turns)-DefaultContextTurns:]
	}

	var sb strings.Builder
	for i, m := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.Role + ": " + m.Content)
	}

	messages := []chat.ChatMessage{{
		Role:    chat.ChatRoleUser,
		Content: fmt.Sprintf(extractionPromptTemplate, sb.String()),
	}}

	raw, err := t.llm.Generate(ctx, messages, chat.GenerateOptions{
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		t.logger.Warn("state extraction call failed, keeping previous state", "error", err)
		return t.state, fmt.Errorf("state extraction call failed: %w", err)
	}

	var extracted SceneState
	if err := jsonx.Decode(raw, &extracted); err != nil {
		t.logger.Warn("state extraction returned unparseable output, keeping previous state",
			"error", err)
		return t.state, &ExtractionError{Raw: raw, Err: err}
	}

	t.state.Merge(&extracted)
	t.logger.Debug("scene state updated",
		"characters", len(t.state.Characters),
		"location", t.state.Location)

	return t.state, nil
}
