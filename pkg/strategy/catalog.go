package strategy

import "fmt"

// IndicatorSpec describes one catalog indicator and the parameter names
// it declares configurable.
type IndicatorSpec struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Params []string `json:"params,omitempty"`
}

// Timeframe is one selectable candle interval.
type Timeframe struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the indicator catalog a session validates conditions
// against. It is fetched from the catalog service; BuiltinCatalog is the
// fallback when the fetch fails or has not completed yet.
type Catalog struct {
	Indicators  []IndicatorSpec `json:"indicators"`
	Timeframes  []Timeframe     `json:"timeframes"`
	Comparators []Comparator    `json:"comparators,omitempty"`
}

// Indicator returns the spec for the given id, if present.
func (c *Catalog) Indicator(id string) (IndicatorSpec, bool) {
	for _, ind := range c.Indicators {
		if ind.ID == id {
			return ind, true
		}
	}
	return IndicatorSpec{}, false
}

// HasTimeframe reports whether the timeframe id is in the catalog.
func (c *Catalog) HasTimeframe(id string) bool {
	for _, tf := range c.Timeframes {
		if tf.ID == id {
			return true
		}
	}
	return false
}

// ComparatorVocabulary returns the catalog's comparator list, falling
// back to the fixed built-in vocabulary when the service did not supply
// one.
func (c *Catalog) ComparatorVocabulary() []Comparator {
	if len(c.Comparators) > 0 {
		return c.Comparators
	}
	return Comparators
}

// BuiltinCatalog returns the built-in fallback catalog. The indicator set
// and default parameters mirror the families the backtest engine computes.
func BuiltinCatalog() *Catalog {
	return &Catalog{
		Indicators: []IndicatorSpec{
			{ID: "rsi", Name: "RSI", Type: "momentum", Params: []string{"period"}},
			{ID: "stochastic_rsi", Name: "Stochastic RSI", Type: "momentum", Params: []string{"period"}},
			{ID: "mfi", Name: "MFI", Type: "momentum", Params: []string{"period"}},
			{ID: "macd", Name: "MACD", Type: "trend", Params: []string{"fast", "slow", "signal"}},
			{ID: "ema", Name: "EMA", Type: "trend", Params: []string{"period"}},
			{ID: "sma", Name: "SMA", Type: "trend", Params: []string{"period"}},
			{ID: "hull_ma", Name: "Hull MA", Type: "trend", Params: []string{"period"}},
			{ID: "supertrend", Name: "SuperTrend", Type: "trend", Params: []string{"period", "multiplier"}},
			{ID: "bollinger", Name: "Bollinger Bands", Type: "volatility", Params: []string{"period", "std_dev"}},
			{ID: "keltner", Name: "Keltner Channels", Type: "volatility", Params: []string{"period", "multiplier"}},
			{ID: "atr", Name: "ATR", Type: "volatility", Params: []string{"period"}},
			{ID: "obv", Name: "OBV", Type: "volume"},
			{ID: "price", Name: "Price", Type: "price"},
		},
		Timeframes: []Timeframe{
			{ID: "1m", Name: "1 minute"},
			{ID: "5m", Name: "5 minutes"},
			{ID: "15m", Name: "15 minutes"},
			{ID: "1h", Name: "1 hour"},
			{ID: "4h", Name: "4 hours"},
			{ID: "1d", Name: "1 day"},
		},
	}
}

// ValidateAgainstCatalog checks the catalog-dependent invariants of a
// config: every condition's indicator must exist and its parameter names
// must be among those the indicator declares. Only Signal configs carry
// conditions; other bot types validate clean.
func ValidateAgainstCatalog(cfg StrategyConfig, catalog *Catalog) []Violation {
	if catalog == nil {
		return nil
	}

	signal, ok := cfg.(*SignalConfig)
	if !ok {
		return nil
	}

	var violations []Violation
	violations = append(violations, validateGroupAgainstCatalog(&signal.Entry, "entry", catalog)...)
	violations = append(violations, validateGroupAgainstCatalog(&signal.Exit, "exit", catalog)...)
	return violations
}

func validateGroupAgainstCatalog(g *RuleGroup, field string, catalog *Catalog) []Violation {
	var violations []Violation

	for i := range g.Conditions {
		c := &g.Conditions[i]
		name := fmt.Sprintf("%s.conditions[%d]", field, i)

		spec, ok := catalog.Indicator(c.Indicator)
		if !ok {
			violations = append(violations, Violation{
				Field:      name + ".indicator",
				Constraint: fmt.Sprintf("indicator %q is not in the catalog", c.Indicator),
			})
			continue
		}

		for param := range c.Params {
			if !containsString(spec.Params, param) {
				violations = append(violations, Violation{
					Field:      name + ".params." + param,
					Constraint: fmt.Sprintf("indicator %q does not declare parameter %q", c.Indicator, param),
				})
			}
		}
	}

	return violations
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
