package strategy

import "fmt"

// Violation reports one failed constraint, scoped to the field that
// violated it. Validators are total: they return violations, never errors.
type Violation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Constraint)
}

// StopPrecedence selects which stop fires first when both a trailing stop
// and a fixed stop loss are configured. The execution engine honors the
// configured precedence; this model only records the choice.
type StopPrecedence string

const (
	StopPrecedenceTrailingFirst StopPrecedence = "trailing_first"
	StopPrecedenceFixedFirst    StopPrecedence = "fixed_first"
)

// RiskProfile is the bounded set of risk-control parameters. Every field
// is optional (nil means unset) except the circuit breaker, which is
// enabled unless explicitly disabled.
type RiskProfile struct {
	StopLossPercent          *float64 `json:"stop_loss_percent,omitempty"`
	TakeProfitPercent        *float64 `json:"take_profit_percent,omitempty"`
	TrailingStopPercent      *float64 `json:"trailing_stop_percent,omitempty"`
	TrailingTakeProfit       bool     `json:"trailing_take_profit,omitempty"`
	TrailingDeviationPercent *float64 `json:"trailing_deviation_percent,omitempty"`
	MaxDailyLossPercent      *float64 `json:"max_daily_loss_percent,omitempty"`
	MaxDrawdownPercent       *float64 `json:"max_drawdown_percent,omitempty"`
	MaxTradesPerDay          *int     `json:"max_trades_per_day,omitempty"`
	CooldownMinutes          *int     `json:"cooldown_minutes,omitempty"`
	MaxOpenPositions         *int     `json:"max_open_positions,omitempty"`
	CircuitBreakerEnabled    *bool    `json:"circuit_breaker_enabled,omitempty"`

	// StopPrecedence only matters when both TrailingStopPercent and
	// StopLossPercent are set.
	StopPrecedence StopPrecedence `json:"stop_precedence,omitempty"`
}

// CircuitBreaker reports the effective circuit-breaker setting (defaults
// to enabled when unset).
func (p *RiskProfile) CircuitBreaker() bool {
	if p.CircuitBreakerEnabled == nil {
		return true
	}
	return *p.CircuitBreakerEnabled
}

// EffectiveStopPrecedence returns the configured precedence, defaulting
// to trailing-first.
func (p *RiskProfile) EffectiveStopPrecedence() StopPrecedence {
	if p.StopPrecedence == "" {
		return StopPrecedenceTrailingFirst
	}
	return p.StopPrecedence
}

// Validate checks every present field against its declared domain and
// returns the full list of violations. Absent optional fields never
// produce violations. The validator is total and returns nil on success.
func (p *RiskProfile) Validate() []Violation {
	var violations []Violation

	positivePercent := func(field string, v *float64) {
		if v != nil && *v <= 0 {
			violations = append(violations, Violation{
				Field:      field,
				Constraint: fmt.Sprintf("must be > 0, got %v", *v),
			})
		}
	}

	positivePercent("stop_loss_percent", p.StopLossPercent)
	positivePercent("take_profit_percent", p.TakeProfitPercent)
	positivePercent("trailing_stop_percent", p.TrailingStopPercent)
	positivePercent("trailing_deviation_percent", p.TrailingDeviationPercent)
	positivePercent("max_daily_loss_percent", p.MaxDailyLossPercent)
	positivePercent("max_drawdown_percent", p.MaxDrawdownPercent)

	// A cap of 0 is a valid "no trades today" setting.
	if p.MaxTradesPerDay != nil && *p.MaxTradesPerDay < 0 {
		violations = append(violations, Violation{
			Field:      "max_trades_per_day",
			Constraint: fmt.Sprintf("must be >= 0, got %d", *p.MaxTradesPerDay),
		})
	}

	if p.CooldownMinutes != nil && *p.CooldownMinutes < 0 {
		violations = append(violations, Violation{
			Field:      "cooldown_minutes",
			Constraint: fmt.Sprintf("must be >= 0, got %d", *p.CooldownMinutes),
		})
	}

	if p.MaxOpenPositions != nil && *p.MaxOpenPositions < 1 {
		violations = append(violations, Violation{
			Field:      "max_open_positions",
			Constraint: fmt.Sprintf("must be >= 1, got %d", *p.MaxOpenPositions),
		})
	}

	if p.StopPrecedence != "" &&
		p.StopPrecedence != StopPrecedenceTrailingFirst &&
		p.StopPrecedence != StopPrecedenceFixedFirst {
		violations = append(violations, Violation{
			Field:      "stop_precedence",
			Constraint: "must be 'trailing_first' or 'fixed_first'",
		})
	}

	return violations
}

// Overlay merges src into p key by key: fields that src defines overwrite
// p, fields src leaves unset survive. This is the preset merge strategy
// for risk tuning.
func (p *RiskProfile) Overlay(src *RiskProfile) {
	if src == nil {
		return
	}
	if src.StopLossPercent != nil {
		p.StopLossPercent = copyFloat(src.StopLossPercent)
	}
	if src.TakeProfitPercent != nil {
		p.TakeProfitPercent = copyFloat(src.TakeProfitPercent)
	}
	if src.TrailingStopPercent != nil {
		p.TrailingStopPercent = copyFloat(src.TrailingStopPercent)
	}
	if src.TrailingTakeProfit {
		p.TrailingTakeProfit = true
	}
	if src.TrailingDeviationPercent != nil {
		p.TrailingDeviationPercent = copyFloat(src.TrailingDeviationPercent)
	}
	if src.MaxDailyLossPercent != nil {
		p.MaxDailyLossPercent = copyFloat(src.MaxDailyLossPercent)
	}
	if src.MaxDrawdownPercent != nil {
		p.MaxDrawdownPercent = copyFloat(src.MaxDrawdownPercent)
	}
	if src.MaxTradesPerDay != nil {
		p.MaxTradesPerDay = copyInt(src.MaxTradesPerDay)
	}
	if src.CooldownMinutes != nil {
		p.CooldownMinutes = copyInt(src.CooldownMinutes)
	}
	if src.MaxOpenPositions != nil {
		p.MaxOpenPositions = copyInt(src.MaxOpenPositions)
	}
	if src.CircuitBreakerEnabled != nil {
		v := *src.CircuitBreakerEnabled
		p.CircuitBreakerEnabled = &v
	}
	if src.StopPrecedence != "" {
		p.StopPrecedence = src.StopPrecedence
	}
}

func copyFloat(v *float64) *float64 {
	out := *v
	return &out
}

func copyInt(v *int) *int {
	out := *v
	return &out
}
