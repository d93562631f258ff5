package strategy

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire form of the tagged union: a bot_type tag plus
// exactly one populated variant section.
type envelope struct {
	BotType BotType       `json:"bot_type"`
	Signal  *SignalConfig `json:"signal,omitempty"`
	DCA     *DCAConfig    `json:"dca,omitempty"`
	Grid    *GridConfig   `json:"grid,omitempty"`
}

// MarshalConfig serializes a strategy config into its tagged JSON
// envelope.
func MarshalConfig(cfg StrategyConfig) ([]byte, error) {
	env := envelope{BotType: cfg.Type()}

	switch c := cfg.(type) {
	case *SignalConfig:
		env.Signal = c
	case *DCAConfig:
		env.DCA = c
	case *GridConfig:
		env.Grid = c
	default:
		return nil, fmt.Errorf("unknown strategy config type %T", cfg)
	}

	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConfig parses a tagged JSON envelope back into the matching
// variant. The bot_type tag selects the variant; a tag without its
// section is an error.
func UnmarshalConfig(data []byte) (StrategyConfig, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not parse strategy config: %w", err)
	}

	switch env.BotType {
	case BotTypeSignal:
		if env.Signal == nil {
			return nil, fmt.Errorf("bot_type is %s but no signal section present", env.BotType)
		}
		return env.Signal, nil
	case BotTypeDCA:
		if env.DCA == nil {
			return nil, fmt.Errorf("bot_type is %s but no dca section present", env.BotType)
		}
		return env.DCA, nil
	case BotTypeGrid:
		if env.Grid == nil {
			return nil, fmt.Errorf("bot_type is %s but no grid section present", env.BotType)
		}
		return env.Grid, nil
	default:
		return nil, fmt.Errorf("bot_type must be 'signal', 'dca', or 'grid', got: %s", env.BotType)
	}
}
