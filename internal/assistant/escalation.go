package assistant

import "strings"

// Detector flags customer messages that should go straight to a human. It is
// a case-insensitive substring match over a fixed phrase list; false
// positives are accepted because missing a real escalation costs more than an
// unnecessary one. It runs before any generation call so a match
// short-circuits the expensive path.
type Detector struct {
	triggers []string
}

// NewDetector builds a detector over the given trigger phrases.
func NewDetector(triggers []string) *Detector {
	lowered := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			lowered = append(lowered, strings.ToLower(trimmed))
		}
	}
	return &Detector{triggers: lowered}
}

// Detect reports whether the text contains any trigger phrase.
func (d *Detector) Detect(text string) bool {
	lowered := strings.ToLower(text)
	for _, t := range d.triggers {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}
