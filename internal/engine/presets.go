package engine

import (
	"github.com/neetkit/cardforge/internal/security"
)

// Preset names a scenario generation configuration.
type Preset string

const (
	// PresetDemo builds a short scenario with neutral perception.
	PresetDemo Preset = "demo"

	// PresetRecon builds a longer survey with neutral perception.
	PresetRecon Preset = "recon"

	// PresetIncident builds a scenario where every mark is critical.
	PresetIncident Preset = "incident"

	// PresetStressTest builds a very long scenario for load testing.
	PresetStressTest Preset = "stress-test"
)

// PresetConfig holds the generation parameters for a preset.
type PresetConfig struct {
	// Number of objects in the scenario
	Steps int

	// Perception applied to any security marks
	Perception security.Perception
}

// Presets lists the known presets in display order.
func Presets() []Preset {
	return []Preset{PresetDemo, PresetRecon, PresetIncident, PresetStressTest}
}

// GetPresetConfig returns the configuration for a preset.
func GetPresetConfig(preset Preset) PresetConfig {
	switch preset {
	case PresetDemo:
		return PresetConfig{Steps: 3, Perception: security.PerceptionNeutral}

	case PresetRecon:
		return PresetConfig{Steps: 12, Perception: security.PerceptionNeutral}

	case PresetIncident:
		return PresetConfig{Steps: 8, Perception: security.PerceptionCritical}

	case PresetStressTest:
		return PresetConfig{Steps: 500, Perception: security.PerceptionSuspicious}

	default:
		// Default to demo preset
		return GetPresetConfig(PresetDemo)
	}
}

// Context returns the generation context a preset implies.
func (c PresetConfig) Context() Context {
	return Context{ContextUserPerception: string(c.Perception)}
}

// PresetOverride replaces one parameter of a preset.
type PresetOverride func(*PresetConfig)

// OverrideSteps replaces the preset step count.
func OverrideSteps(steps int) PresetOverride {
	return func(c *PresetConfig) { c.Steps = steps }
}

// OverridePerception replaces the preset perception. The raw value is kept
// so unrecognized input still reaches the annotator.
func OverridePerception(perception string) PresetOverride {
	return func(c *PresetConfig) { c.Perception = security.Perception(perception) }
}

// RunPreset creates the scenario name with the preset's parameters after
// applying overrides in order.
func (e *Engine) RunPreset(name string, preset Preset, overrides ...PresetOverride) (Scenario, error) {
	cfg := GetPresetConfig(preset)
	for _, override := range overrides {
		override(&cfg)
	}
	return e.CreateScenario(name, cfg.Steps, cfg.Context())
}
