// Package engine runs the turn loop: generate, guard, track, persist.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/philfry41/grok-playground/internal/services"
	"github.com/philfry41/grok-playground/internal/storage"
	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/guard"
	"github.com/philfry41/grok-playground/pkg/prompts"
	"github.com/philfry41/grok-playground/pkg/scene"
)

const (
	DefaultWordTarget = 500
	MinWordTarget     = 250
	MaxWordTarget     = 1500

	// Roughly 1.3 tokens per English word, clamped to API limits.
	tokensPerWord     = 1.3
	minContTokens     = 200
	maxContTokens     = 2000
	defaultRepairTok  = 700
	minRepairTok      = 300
	repairBudgetShare = 0.6

	// extractionTurns is how many recent messages feed state extraction.
	extractionTurns = 8

	fallbackSystemPrompt = "You are an explicit storyteller. Use detailed, sensual language."
)

// Options tune the engine. Zero values are replaced with defaults.
type Options struct {
	HistoryLimit int
	MaxTokens    int
	Temperature  float64
	TopP         float64
	Retries      int
	RetryDelay   time.Duration
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = prompts.DefaultHistoryLimit
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1200
	}
	if o.Temperature == 0 {
		o.Temperature = 1.2
	}
	if o.TopP == 0 {
		o.TopP = 0.95
	}
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	return o
}

// TurnResult is what one turn produced. StateErr and PersistErr are
// degraded-mode signals: the reply is still usable when they are set.
type TurnResult struct {
	Reply      string
	Guarded    bool
	StateErr   error
	PersistErr error
}

// Engine owns the per-turn pipeline. Not safe for concurrent turns on
// the same session.
type Engine struct {
	llm     services.LLMService
	guard   *guard.Guard
	tracker *scene.Tracker
	store   storage.SessionStore
	logger  *slog.Logger
	opts    Options
}

// New creates an engine. store may be nil to disable persistence.
func New(llm services.LLMService, g *guard.Guard, tracker *scene.Tracker, store storage.SessionStore, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		llm:     llm,
		guard:   g,
		tracker: tracker,
		store:   store,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// Tracker returns the scene-state tracker.
func (e *Engine) Tracker() *scene.Tracker { return e.tracker }

// ProcessTurn runs one user turn: generate a reply, enforce the edge
// guard, record the exchange, update scene state, and persist.
func (e *Engine) ProcessTurn(ctx context.Context, sess *Session, input string) (*TurnResult, error) {
	return e.turn(ctx, sess, input, e.opts.MaxTokens, defaultRepairTok)
}

// Continue runs a /cont turn: a synthetic guidance message sized to the
// word target, with a proportional repair budget.
func (e *Engine) Continue(ctx context.Context, sess *Session, targetWords int) (*TurnResult, error) {
	target := clampWordTarget(targetWords)
	maxTokens := continuationTokens(target)
	guidance := prompts.ContinuationGuidance(target, sess.Mode)
	return e.turn(ctx, sess, guidance, maxTokens, repairTokens(maxTokens))
}

func (e *Engine) turn(ctx context.Context, sess *Session, input string, maxTokens, repairBudget int) (*TurnResult, error) {
	messages, err := prompts.New().
		WithHistory(sess.History).
		WithContinuity(e.tracker.State().ContinuityPrompt()).
		WithUserMessage(input, chat.ChatRoleUser).
		WithHistoryLimit(e.opts.HistoryLimit).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	genOpts := chat.GenerateOptions{
		Temperature: e.opts.Temperature,
		TopP:        e.opts.TopP,
		MaxTokens:   maxTokens,
	}
	reply, err := e.generate(ctx, messages, genOpts, input)
	if err != nil {
		return nil, err
	}

	guarded := false
	if sess.Mode != prompts.ModePayoff {
		final := e.guard.Apply(ctx, reply, e.repairFunc(messages, repairBudget))
		guarded = final != reply
		reply = final
	}

	sess.History.Append(chat.ChatRoleUser, input)
	sess.History.Append(chat.ChatRoleAgent, reply)

	result := &TurnResult{Reply: reply, Guarded: guarded}

	if _, err := e.tracker.Extract(ctx, sess.History.Recent(extractionTurns)); err != nil {
		result.StateErr = err
	}
	result.PersistErr = e.persist(ctx, sess)

	return result, nil
}

// generate tries the full request a few times, then falls back to a
// minimal two-message context before giving up.
func (e *Engine) generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions, input string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.Retries; attempt++ {
		reply, err := e.llm.Generate(ctx, messages, opts)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		e.logger.Warn("generation attempt failed", "attempt", attempt, "error", err)

		if attempt < e.opts.Retries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(e.opts.RetryDelay):
			}
		}
	}

	e.logger.Warn("all attempts failed, trying minimal-context fallback")
	minimal := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: fallbackSystemPrompt},
		{Role: chat.ChatRoleUser, Content: "Continue this story: " + input},
	}
	reply, err := e.llm.Generate(ctx, minimal, chat.GenerateOptions{
		Temperature: 0.7,
		TopP:        0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("generation failed after %d attempts: %w", e.opts.Retries, lastErr)
	}
	return reply, nil
}

// repairFunc binds the current turn's context and token budget into the
// guard's repair callback.
func (e *Engine) repairFunc(base []chat.ChatMessage, budget int) guard.RepairFunc {
	return func(ctx context.Context, kept, tail string) (string, error) {
		msgs := make([]chat.ChatMessage, 0, len(base)+2)
		msgs = append(msgs, base...)
		if kept != "" {
			msgs = append(msgs, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: kept})
		}
		msgs = append(msgs, chat.ChatMessage{Role: chat.ChatRoleUser, Content: prompts.RepairPrompt(kept)})

		return e.llm.Generate(ctx, msgs, chat.GenerateOptions{
			Temperature: e.opts.Temperature,
			TopP:        e.opts.TopP,
			MaxTokens:   budget,
		})
	}
}

// NewScene wipes the transcript back to its priming and resets the
// tracked scene state.
func (e *Engine) NewScene(ctx context.Context, sess *Session) error {
	sess.History.Reset()
	e.tracker.Reset()
	return e.persist(ctx, sess)
}

// RawReassert pins the lexical contract back on top of the priming.
func (e *Engine) RawReassert(sess *Session) {
	sess.History.PrependPriming(chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: prompts.RawReassertPrompt,
	})
}

// SetMode switches the climax mode for subsequent turns.
func (e *Engine) SetMode(sess *Session, mode prompts.Mode) {
	sess.Mode = mode
}

// LoadSession restores a persisted session, or returns a fresh one when
// nothing is stored under the ID. The tracker adopts the loaded state.
func (e *Engine) LoadSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	if e.store == nil {
		return NewSession(), nil
	}

	doc, err := e.store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return NewSession(), nil
	}

	if doc.Scene != nil {
		e.tracker.WithState(doc.Scene)
	}
	mode := doc.Mode
	if mode == "" {
		mode = prompts.ModeEdge
	}
	return &Session{ID: doc.ID, History: doc.History, Mode: mode}, nil
}

func (e *Engine) persist(ctx context.Context, sess *Session) error {
	if e.store == nil {
		return nil
	}
	doc := &storage.SessionDoc{
		ID:      sess.ID,
		History: sess.History,
		Scene:   e.tracker.State(),
		Mode:    sess.Mode,
	}
	if err := e.store.SaveSession(ctx, doc); err != nil {
		e.logger.Warn("failed to persist session", "session_id", sess.ID, "error", err)
		return err
	}
	return nil
}

func clampWordTarget(target int) int {
	if target <= 0 {
		return DefaultWordTarget
	}
	if target < MinWordTarget {
		return MinWordTarget
	}
	if target > MaxWordTarget {
		return MaxWordTarget
	}
	return target
}

func continuationTokens(targetWords int) int {
	tokens := int(float64(targetWords) * tokensPerWord)
	if tokens < minContTokens {
		return minContTokens
	}
	if tokens > maxContTokens {
		return maxContTokens
	}
	return tokens
}

// repairTokens gives the repair call a share of the continuation budget,
// never below the floor.
func repairTokens(maxTokens int) int {
	tokens := int(float64(maxTokens) * repairBudgetShare)
	if tokens < minRepairTok {
		return minRepairTok
	}
	return tokens
}
