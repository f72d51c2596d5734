package scene

import (
	"fmt"
	"sort"
	"strings"
)

const continuityRules = `MANDATORY CONTINUITY RULES:
1. CLOTHING: If clothing is removed/partially removed, it STAYS that way until explicitly put back on
2. POSITIONS: Characters can move naturally, but describe the movement when it happens
3. BODY PARTS: Exposed body parts remain exposed until explicitly covered
4. PHYSICAL STATE: Current physical conditions (sweating, trembling, etc.) continue unless explicitly changed
5. OBJECTS: Items remain where they are unless explicitly moved
6. NO MAGICAL RESETS: Do not have clothes magically reappear, positions reset, or body parts become covered without explicit action
7. FOLLOW USER INSTRUCTIONS: When the user explicitly requests physical changes (removing clothes, changing positions), follow those instructions and update the scene accordingly

Continue the story while maintaining accurate physical state tracking. Describe all physical changes as explicit actions.`

// ContinuityPrompt renders the state into a directive block for the
// generator. Deterministic: characters are listed in sorted order.
// No side effects and no model calls.
//
// Example character line:
//
//	- Stephanie: blouse unbuttoned, sitting on the bed, flushed, (trembling), exposed: shoulders, doing: unbuttoning his shirt
func (s *SceneState) ContinuityPrompt() string {
	var sb strings.Builder

	sb.WriteString("CRITICAL: MAINTAIN ACCURATE PHYSICAL CONTINUITY - TRACK CHANGES PROPERLY\n\n")
	sb.WriteString("CURRENT SCENE STATE (TRACK CHANGES ACCURATELY):\n")

	if len(s.Characters) == 0 {
		sb.WriteString("- No characters tracked yet\n")
	} else {
		for _, name := range sortedKeys(s.Characters) {
			sb.WriteString(characterLine(name, s.Characters[name]))
		}
	}

	sb.WriteString(fmt.Sprintf("- Location: %s\n", s.Location))
	sb.WriteString(fmt.Sprintf("- Positions: %s\n", s.Positions))
	sb.WriteString(fmt.Sprintf("- Physical contact: %s\n", s.PhysicalContact))
	sb.WriteString(fmt.Sprintf("- Mood/Atmosphere: %s\n", s.MoodAtmosphere))

	if len(s.ArousalLevels) > 0 {
		parts := make([]string, 0, len(s.ArousalLevels))
		for _, name := range sortedKeys(s.ArousalLevels) {
			parts = append(parts, fmt.Sprintf("%s: %s", name, s.ArousalLevels[name]))
		}
		sb.WriteString(fmt.Sprintf("- Arousal levels: %s\n", strings.Join(parts, ", ")))
	}
	if len(s.ClothingRemoved) > 0 {
		sb.WriteString(fmt.Sprintf("- Clothing removed: %s\n", strings.Join(s.ClothingRemoved, ", ")))
	}

	sb.WriteString(fmt.Sprintf("- Key objects: %s\n", listOr(s.KeyObjects, "none")))
	sb.WriteString(fmt.Sprintf("- Story progress: %s\n", listOr(s.StoryProgress, "beginning")))

	sb.WriteString("\n")
	sb.WriteString(continuityRules)

	return sb.String()
}

func characterLine(name string, c CharacterState) string {
	parts := []string{c.Clothing, c.Position, c.Mood}
	if c.PhysicalState != "" && c.PhysicalState != defaultPhysical {
		parts = append(parts, fmt.Sprintf("(%s)", c.PhysicalState))
	}
	if len(c.BodyPartsExposed) > 0 {
		parts = append(parts, fmt.Sprintf("exposed: %s", strings.Join(c.BodyPartsExposed, ", ")))
	}
	if c.Interactions != "" && c.Interactions != defaultDoing {
		parts = append(parts, fmt.Sprintf("doing: %s", c.Interactions))
	}
	return fmt.Sprintf("- %s: %s\n", name, strings.Join(parts, ", "))
}

func listOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
