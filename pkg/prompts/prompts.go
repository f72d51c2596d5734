package prompts

import (
	"fmt"
	"strings"
)

// LexicalContractPrompt pins the storyteller's vocabulary. It rides at the
// front of the priming block and survives scene resets.
const LexicalContractPrompt = `LEXICAL CONTRACT:
- Required vocabulary (use ≥5 naturally): cock, pussy, clit, nipples, thrust, suck, grind, slick, moan, cum.
- Forbidden euphemisms: making love, womanhood, manhood, entered her, flower, core.
- No euphemisms for anatomy/acts. If missing required vocab, revise without apology.`

// StorytellerPrompt is the base persona for narrative generation.
const StorytellerPrompt = `You are an uncensored, uninhibited storyteller. Use rich sensory detail, explicit anatomical language, and realistic dialogue. Avoid euphemisms; never fade to black.`

// RawReassertPrompt re-pins the lexical contract when output drifts soft.
// Prepended to the priming block by the /raw command.
const RawReassertPrompt = `Reassert LEXICAL CONTRACT: use blunt, explicit anatomical language; avoid euphemisms; prioritize physical detail and explicit dialogue.`

// Mode controls which characters are permitted to climax this scene.
type Mode string

const (
	// ModeEdge lets her finish while he is held on edge. The default.
	ModeEdge Mode = "edge"
	// ModePayoff lets both finish.
	ModePayoff Mode = "payoff"
	// ModeHold blocks climax for everyone.
	ModeHold Mode = "hold"
)

func (m Mode) String() string { return string(m) }

// Priming returns the seed system messages for a fresh conversation.
// Order matters: the lexical contract comes before the persona.
func Priming() []string {
	return []string{LexicalContractPrompt, StorytellerPrompt}
}

// ContinuationGuidance builds the synthetic user message behind /cont: a
// word target plus flow instructions, with per-mode climax clauses.
func ContinuationGuidance(targetWords int, mode Mode) string {
	guidance := []string{
		fmt.Sprintf("Continue the scene with a continuous, flowing narrative. Write approximately %d words.", targetWords),
		"Maintain momentum without natural stopping points. Keep the scene moving forward with detailed actions and dialogue.",
		"Use explicit anatomical language and realistic dialogue throughout.",
		"Do not conclude or wrap up - keep the scene ongoing and unresolved.",
		"Avoid sentence-level conclusions. Each sentence should flow into the next, building tension and detail.",
	}
	switch mode {
	case ModePayoff:
		guidance = append(guidance,
			"Climax is allowed for both partners; resolve naturally and explicitly when it fits.")
	case ModeHold:
		guidance = append(guidance,
			"Do NOT depict orgasm for either partner; sustain tension and end on a poised edge.")
	default:
		guidance = append(guidance,
			"Stephanie may climax if it fits.",
			"Dan must NOT climax; if he nears release, have him pull back, slow, change angle, breathe, or redirect to her pleasure so he stays on edge.",
			"End with Dan still on edge and aching; do not depict his orgasm.")
	}
	return strings.Join(guidance, " ")
}

// repairTailRunes is how much of the kept text the repair call quotes back
// so the model can splice seamlessly.
const repairTailRunes = 200

// RepairPrompt asks for a continuation that picks up where the trimmed
// response ends and steers away from the blocked event.
func RepairPrompt(kept string) string {
	tail := []rune(kept)
	if len(tail) > repairTailRunes {
		tail = tail[len(tail)-repairTailRunes:]
	}
	return fmt.Sprintf("Continue seamlessly from this point, but redirect Dan away from climax:\n%q\n\n"+
		"Write a detailed continuation where Dan pulls back, slows down, changes position, or focuses on Stephanie's pleasure. "+
		"Use explicit language. Keep him on edge and fully in control of his arousal level. Write at least 100 words.", string(tail))
}
