package scene

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sentinel values the extractor uses for fields it cannot determine.
// They never overwrite an existing value during a merge.
const (
	Unknown = "unknown"

	defaultContact  = "none"
	defaultMood     = "neutral"
	defaultClothing = "fully dressed"
	defaultPhysical = "normal"
	defaultDoing    = "none"
)

var titleCaser = cases.Title(language.English)

// CharacterState is what is physically and emotionally true about one
// character right now.
type CharacterState struct {
	Clothing         string   `json:"clothing"`
	Position         string   `json:"position"`
	Mood             string   `json:"mood"`
	PhysicalState    string   `json:"physical_state"`
	BodyPartsExposed []string `json:"body_parts_exposed"`
	Interactions     string   `json:"interactions"`
}

// NewCharacterState returns the defaults a character gets the first time
// the extractor names them.
func NewCharacterState() CharacterState {
	return CharacterState{
		Clothing:         defaultClothing,
		Position:         Unknown,
		Mood:             defaultMood,
		PhysicalState:    defaultPhysical,
		BodyPartsExposed: []string{},
		Interactions:     defaultDoing,
	}
}

// SceneState is the running narrative-continuity object for one
// conversation. It is owned by a single session and must not be shared
// across conversations; callers serialize access (no internal locking).
type SceneState struct {
	Characters      map[string]CharacterState `json:"characters"`
	Location        string                    `json:"location"`
	Positions       string                    `json:"positions"`
	PhysicalContact string                    `json:"physical_contact"`
	MoodAtmosphere  string                    `json:"mood_atmosphere"`
	KeyObjects      []string                  `json:"key_objects"`
	StoryProgress   []string                  `json:"story_progress"`
	ArousalLevels   map[string]string         `json:"arousal_levels"`
	ClothingRemoved []string                  `json:"clothing_removed"`
	BodyPositions   map[string]string         `json:"body_positions"`
}

// NewSceneState returns an empty state with documented defaults.
func NewSceneState() *SceneState {
	s := &SceneState{}
	s.Reset()
	return s
}

// Reset returns every field to its default. Used when starting a new scene.
func (s *SceneState) Reset() {
	s.Characters = make(map[string]CharacterState)
	s.Location = Unknown
	s.Positions = Unknown
	s.PhysicalContact = defaultContact
	s.MoodAtmosphere = defaultMood
	s.KeyObjects = []string{}
	s.StoryProgress = []string{}
	s.ArousalLevels = make(map[string]string)
	s.ClothingRemoved = []string{}
	s.BodyPositions = make(map[string]string)
}

// Merge folds a freshly extracted payload into the running state, in place.
//
// Rules:
//   - Characters new to the state are initialized with defaults, then
//     overlaid. Per-field, "unknown" and empty lists never overwrite.
//   - Scalar fields overwrite only when present and not "unknown".
//   - List fields replace wholesale when reported non-empty; the extractor
//     re-reports the full current list each time.
//   - Map fields update key-by-key, preserving keys not mentioned.
//
// Merging the same payload twice is the same as merging it once.
func (s *SceneState) Merge(in *SceneState) {
	if in == nil {
		return
	}

	// A state unmarshaled from an older or hand-edited document may be
	// missing map keys entirely.
	if s.Characters == nil {
		s.Characters = make(map[string]CharacterState)
	}
	if s.ArousalLevels == nil {
		s.ArousalLevels = make(map[string]string)
	}
	if s.BodyPositions == nil {
		s.BodyPositions = make(map[string]string)
	}

	for name, data := range in.Characters {
		key := CanonicalName(name)
		current, ok := s.Characters[key]
		if !ok {
			current = NewCharacterState()
		}
		current.merge(data)
		s.Characters[key] = current
	}

	mergeScalar(&s.Location, in.Location)
	mergeScalar(&s.Positions, in.Positions)
	mergeScalar(&s.PhysicalContact, in.PhysicalContact)
	mergeScalar(&s.MoodAtmosphere, in.MoodAtmosphere)

	if len(in.KeyObjects) > 0 {
		s.KeyObjects = append([]string(nil), in.KeyObjects...)
	}
	if len(in.StoryProgress) > 0 {
		s.StoryProgress = append([]string(nil), in.StoryProgress...)
	}
	if len(in.ClothingRemoved) > 0 {
		s.ClothingRemoved = append([]string(nil), in.ClothingRemoved...)
	}

	for name, level := range in.ArousalLevels {
		if level != "" && level != Unknown {
			s.ArousalLevels[CanonicalName(name)] = level
		}
	}
	for name, pos := range in.BodyPositions {
		if pos != "" && pos != Unknown {
			s.BodyPositions[CanonicalName(name)] = pos
		}
	}
}

func (c *CharacterState) merge(in CharacterState) {
	mergeScalar(&c.Clothing, in.Clothing)
	mergeScalar(&c.Position, in.Position)
	mergeScalar(&c.Mood, in.Mood)
	mergeScalar(&c.PhysicalState, in.PhysicalState)
	mergeScalar(&c.Interactions, in.Interactions)
	if len(in.BodyPartsExposed) > 0 {
		c.BodyPartsExposed = append([]string(nil), in.BodyPartsExposed...)
	}
}

func mergeScalar(dst *string, v string) {
	if v != "" && v != Unknown {
		*dst = v
	}
}

// CanonicalName normalizes a character name so repeated extractions of
// the same character under different casing collapse to one entry.
func CanonicalName(name string) string {
	return titleCaser.String(name)
}
