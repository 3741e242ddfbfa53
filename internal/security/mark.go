// Package security records integrity-digest marks for security-relevant
// processes together with how the user perceives them.
package security

import (
	"strings"
)

// Perception is the closed set of tags a mark can carry.
type Perception string

const (
	PerceptionCritical   Perception = "critical"
	PerceptionSuspicious Perception = "suspicious"
	PerceptionNeutral    Perception = "neutral"
	PerceptionUnknown    Perception = "unknown"
)

var perceptionLabels = map[Perception]string{
	PerceptionCritical:   "#!BLAKE2B_CRITICAL_SECURITY_IMPLICATION",
	PerceptionSuspicious: "#!BLAKE2B_SUSPICIOUS_ACTIVITY",
	PerceptionNeutral:    "#!BLAKE2B_OBSERVED_PROCESS",
	PerceptionUnknown:    "#!BLAKE2B_UNKNOWN_PERCEPTION",
}

// ParsePerception maps free-form input to a tag. Anything unrecognized is
// PerceptionUnknown.
func ParsePerception(raw string) Perception {
	switch p := Perception(strings.ToLower(strings.TrimSpace(raw))); p {
	case PerceptionCritical, PerceptionSuspicious, PerceptionNeutral:
		return p
	default:
		return PerceptionUnknown
	}
}

// Mark is the integrity record for one subject.
type Mark struct {
	SubjectID       string     `json:"subject_id"`
	IntegrityDigest string     `json:"integrity_digest"`
	Perception      Perception `json:"perception_tag"`
}

// Label renders the shebang form, e.g. "#!BLAKE2B_OBSERVED_PROCESS <digest>".
func (m Mark) Label() string {
	prefix, ok := perceptionLabels[m.Perception]
	if !ok {
		prefix = perceptionLabels[PerceptionUnknown]
	}
	return prefix + " " + m.IntegrityDigest
}
