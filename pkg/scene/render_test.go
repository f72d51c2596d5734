package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinuityPrompt_EmptyState(t *testing.T) {
	prompt := NewSceneState().ContinuityPrompt()

	assert.Contains(t, prompt, "No characters tracked yet")
	assert.Contains(t, prompt, "- Location: unknown")
	assert.Contains(t, prompt, "- Key objects: none")
	assert.Contains(t, prompt, "- Story progress: beginning")
	assert.Contains(t, prompt, "MANDATORY CONTINUITY RULES")
}

func TestContinuityPrompt_RendersCharacterVerbatim(t *testing.T) {
	s := NewSceneState()
	s.Characters["Stephanie"] = CharacterState{
		Clothing:         "blouse unbuttoned, bra visible",
		Position:         "sitting on edge of bed",
		Mood:             "aroused",
		PhysicalState:    "trembling",
		BodyPartsExposed: []string{"shoulders", "stomach"},
		Interactions:     "gripping the sheets",
	}
	s.Location = "dim hotel room"

	prompt := s.ContinuityPrompt()

	assert.Contains(t, prompt, "Stephanie")
	assert.Contains(t, prompt, "blouse unbuttoned, bra visible")
	assert.Contains(t, prompt, "(trembling)")
	assert.Contains(t, prompt, "exposed: shoulders, stomach")
	assert.Contains(t, prompt, "doing: gripping the sheets")
	assert.Contains(t, prompt, "- Location: dim hotel room")
	assert.NotContains(t, prompt, "No characters tracked yet")
}

func TestContinuityPrompt_OmitsDefaultPhysicalAndDoing(t *testing.T) {
	s := NewSceneState()
	s.Characters["Dan"] = NewCharacterState()

	prompt := s.ContinuityPrompt()

	assert.Contains(t, prompt, "- Dan: fully dressed, unknown, neutral\n")
	assert.NotContains(t, prompt, "(normal)")
	assert.NotContains(t, prompt, "doing: none")
}

func TestContinuityPrompt_Deterministic(t *testing.T) {
	s := NewSceneState()
	s.Characters["Dan"] = NewCharacterState()
	s.Characters["Stephanie"] = NewCharacterState()
	s.ArousalLevels["Dan"] = "high"
	s.ArousalLevels["Stephanie"] = "medium"

	first := s.ContinuityPrompt()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.ContinuityPrompt(), "rendering must be deterministic")
	}

	// Characters are sorted by name.
	assert.Less(t, strings.Index(first, "- Dan:"), strings.Index(first, "- Stephanie:"))
	assert.Contains(t, first, "- Arousal levels: Dan: high, Stephanie: medium")
}

func TestContinuityPrompt_ArousalAndClothingSections(t *testing.T) {
	s := NewSceneState()
	prompt := s.ContinuityPrompt()
	assert.NotContains(t, prompt, "Arousal levels", "empty sections are omitted")
	assert.NotContains(t, prompt, "Clothing removed")

	s.ArousalLevels["Stephanie"] = "peak"
	s.ClothingRemoved = []string{"blouse", "bra"}
	prompt = s.ContinuityPrompt()
	assert.Contains(t, prompt, "- Arousal levels: Stephanie: peak")
	assert.Contains(t, prompt, "- Clothing removed: blouse, bra")
}
