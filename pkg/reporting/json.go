package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// JSONReporter writes backtest results alongside the submitted
// configuration, so a saved report is reproducible.
type JSONReporter struct{}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

type jsonReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	BotType     strategy.BotType `json:"bot_type"`
	Pair        string           `json:"pair"`
	Result      *backtest.Result `json:"result"`
	Config      json.RawMessage  `json:"config"`
}

// WriteBacktestReport writes the result and config to path, creating
// parent directories as needed.
func (r *JSONReporter) WriteBacktestReport(cfg strategy.StrategyConfig, result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	rawCfg, err := strategy.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}

	report := jsonReport{
		GeneratedAt: time.Now(),
		BotType:     cfg.Type(),
		Pair:        cfg.TradingPair(),
		Result:      result,
		Config:      rawCfg,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
