package strategy

import (
	"fmt"

	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/grid"
)

// Preset is a named partial configuration applied onto a working draft.
// Sections the preset leaves nil are not touched.
type Preset struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	BotType BotType `json:"bot_type"`

	EntryRules *RuleGroup   `json:"entry_rules,omitempty"`
	ExitRules  *RuleGroup   `json:"exit_rules,omitempty"`
	Risk       *RiskProfile `json:"risk,omitempty"`
	GridSpec   *grid.Spec   `json:"grid_spec,omitempty"`
	DCASpec    *dca.Spec    `json:"dca_spec,omitempty"`

	// Params is the catalog's free-form numeric bag. The merge surface is
	// the typed sections above; Params is carried for wire fidelity and
	// display only, never merged.
	Params map[string]float64 `json:"params,omitempty"`
}

// ApplyPreset merges a preset onto the draft in place. The merge is
// deliberately asymmetric:
//
//   - risk is overlaid key by key (preset keys win where defined,
//     draft-only keys survive) -- risk tuning is incremental;
//   - rule groups and grid/dca specs are replaced wholesale when the
//     preset defines them -- strategy logic is a complete alternative,
//     never blended.
//
// Applying the same preset twice yields the same draft as applying it
// once. A preset for a different bot type is rejected.
func ApplyPreset(draft StrategyConfig, preset *Preset) error {
	if preset == nil {
		return fmt.Errorf("preset is nil")
	}
	if preset.BotType != draft.Type() {
		return fmt.Errorf("preset %q targets bot type %s, draft is %s", preset.ID, preset.BotType, draft.Type())
	}

	switch cfg := draft.(type) {
	case *SignalConfig:
		if preset.EntryRules != nil {
			cfg.Entry = preset.EntryRules.clone()
		}
		if preset.ExitRules != nil {
			cfg.Exit = preset.ExitRules.clone()
		}
		cfg.Risk.Overlay(preset.Risk)

	case *DCAConfig:
		if preset.DCASpec != nil {
			cfg.Spec = *preset.DCASpec
		}
		cfg.Risk.Overlay(preset.Risk)

	case *GridConfig:
		if preset.GridSpec != nil {
			cfg.Spec = *preset.GridSpec
		}

	default:
		return fmt.Errorf("unknown strategy config type %T", draft)
	}

	return nil
}

// FilterPresets returns the presets matching the given bot type,
// preserving catalog order. The preset catalog service returns all
// presets; filtering happens client-side.
func FilterPresets(presets []Preset, botType BotType) []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.BotType == botType {
			out = append(out, p)
		}
	}
	return out
}
