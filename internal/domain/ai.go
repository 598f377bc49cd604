package domain

// ModerationResult is the moderation gate's verdict. Severity is one of
// low|medium|high and only meaningful when the text was rejected.
type ModerationResult struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Classification is the coarse (archetype, emotion tone) label pair attached
// to a story. Values outside the fixed vocabularies are coerced to defaults.
type Classification struct {
	Archetype   string `json:"archetype"`
	EmotionTone string `json:"emotion_tone"`
}

var Archetypes = []string{
	"Hero", "Shadow", "Anima/Animus", "Self", "Persona",
	"Great Mother", "Wise Old Man", "Trickster", "Child",
}

var EmotionTones = []string{
	"joyful", "melancholic", "anxious", "peaceful",
	"angry", "hopeful", "fearful", "loving",
}

func ValidArchetype(s string) bool {
	for _, a := range Archetypes {
		if a == s {
			return true
		}
	}
	return false
}

func ValidEmotionTone(s string) bool {
	for _, t := range EmotionTones {
		if t == s {
			return true
		}
	}
	return false
}
