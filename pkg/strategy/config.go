package strategy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/grid"
)

// BotType tags the three strategy kinds.
type BotType string

const (
	BotTypeSignal BotType = "signal"
	BotTypeDCA    BotType = "dca"
	BotTypeGrid   BotType = "grid"
)

// IsValid reports whether the bot type is recognized.
func (t BotType) IsValid() bool {
	return t == BotTypeSignal || t == BotTypeDCA || t == BotTypeGrid
}

// Direction of a signal strategy's position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// OrderType of a signal strategy's entry order.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// StrategyConfig is the tagged union over the three bot kinds. Invalid
// cross-type states are unrepresentable: each variant carries only its
// own fields.
type StrategyConfig interface {
	// Type returns the variant's tag.
	Type() BotType

	// TradingPair returns the configured market pair.
	TradingPair() string

	// ValidateForSubmission checks every submission invariant and
	// returns the full list of violations, nil on success. It is total
	// and never panics on a zero-value config.
	ValidateForSubmission() []Violation

	// Snapshot returns a deep copy. Submissions hand collaborators a
	// snapshot, never a live reference into the draft.
	Snapshot() StrategyConfig
}

// fieldValidate runs struct-tag domain checks on a spec and converts the
// failures into field-scoped violations.
var fieldValidate = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report violations under the wire field names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func structViolations(prefix string, s interface{}) []Violation {
	err := fieldValidate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Field: prefix, Constraint: err.Error()}}
	}

	violations := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, Violation{
			Field:      fmt.Sprintf("%s.%s", prefix, fe.Field()),
			Constraint: fmt.Sprintf("failed '%s=%s' check, got: %v", fe.Tag(), fe.Param(), fe.Value()),
		})
	}
	return violations
}

// SignalConfig is a rule-driven entry/exit strategy.
type SignalConfig struct {
	Pair              string      `json:"pair"`
	Timeframe         string      `json:"timeframe"`
	Direction         Direction   `json:"direction"`
	OrderType         OrderType   `json:"order_type"`
	OrderAmount       float64     `json:"order_amount"`
	SlippageTolerance float64     `json:"slippage_tolerance,omitempty"`
	Entry             RuleGroup   `json:"entry"`
	Exit              RuleGroup   `json:"exit"`
	Risk              RiskProfile `json:"risk"`
	PaperMode         bool        `json:"paper_mode"`
}

// NewSignalConfig creates a signal draft with defaults applied: market
// orders, long direction, empty AND-combined rule groups. The entry
// group must gain at least one condition before the draft is
// submittable.
func NewSignalConfig(pair, timeframe string) *SignalConfig {
	return &SignalConfig{
		Pair:      pair,
		Timeframe: timeframe,
		Direction: DirectionLong,
		OrderType: OrderTypeMarket,
		Entry:     NewRuleGroup(),
		Exit:      NewRuleGroup(),
	}
}

func (c *SignalConfig) Type() BotType       { return BotTypeSignal }
func (c *SignalConfig) TradingPair() string { return c.Pair }

func (c *SignalConfig) ValidateForSubmission() []Violation {
	var violations []Violation

	if c.Pair == "" {
		violations = append(violations, Violation{Field: "pair", Constraint: "pair is required"})
	}
	if c.Timeframe == "" {
		violations = append(violations, Violation{Field: "timeframe", Constraint: "timeframe is required"})
	}
	if c.OrderAmount <= 0 {
		violations = append(violations, Violation{
			Field:      "order_amount",
			Constraint: fmt.Sprintf("must be > 0, got %v", c.OrderAmount),
		})
	}
	if c.SlippageTolerance < 0 {
		violations = append(violations, Violation{
			Field:      "slippage_tolerance",
			Constraint: fmt.Sprintf("must be >= 0, got %v", c.SlippageTolerance),
		})
	}

	// The entry gate: without at least one entry condition the strategy
	// can never open a position. An empty exit group is fine, it defers
	// to the risk profile's stop-loss/take-profit.
	if c.Entry.Len() == 0 {
		violations = append(violations, Violation{
			Field:      "entry.conditions",
			Constraint: "entry conditions required",
		})
	}

	violations = append(violations, c.Entry.Validate("entry")...)
	violations = append(violations, c.Exit.Validate("exit")...)
	violations = append(violations, c.Risk.Validate()...)

	return violations
}

func (c *SignalConfig) Snapshot() StrategyConfig {
	out := *c
	out.Entry = c.Entry.clone()
	out.Exit = c.Exit.clone()
	return &out
}

// DCAConfig is a scaled repeated-buying strategy.
type DCAConfig struct {
	Pair      string      `json:"pair"`
	Spec      dca.Spec    `json:"spec"`
	Risk      RiskProfile `json:"risk"`
	PaperMode bool        `json:"paper_mode"`
}

// NewDCAConfig creates a DCA draft with the spec's conventional
// defaults: uniform ladder, take profit over average entry.
func NewDCAConfig(pair string) *DCAConfig {
	return &DCAConfig{
		Pair: pair,
		Spec: dca.Spec{
			SafetyOrderStepScale:   1.0,
			SafetyOrderVolumeScale: 1.0,
			TakeProfitBasis:        dca.BasisAverageEntry,
		},
	}
}

func (c *DCAConfig) Type() BotType       { return BotTypeDCA }
func (c *DCAConfig) TradingPair() string { return c.Pair }

func (c *DCAConfig) ValidateForSubmission() []Violation {
	var violations []Violation

	if c.Pair == "" {
		violations = append(violations, Violation{Field: "pair", Constraint: "pair is required"})
	}

	violations = append(violations, structViolations("spec", &c.Spec)...)

	if c.Spec.TakeProfitBasis != "" && !c.Spec.TakeProfitBasis.IsValid() {
		violations = append(violations, Violation{
			Field:      "spec.take_profit_basis",
			Constraint: fmt.Sprintf("must be '%s' or '%s'", dca.BasisAverageEntry, dca.BasisBaseOrderPrice),
		})
	}

	violations = append(violations, c.Risk.Validate()...)

	return violations
}

func (c *DCAConfig) Snapshot() StrategyConfig {
	out := *c
	return &out
}

// GridConfig is a price-ladder strategy.
type GridConfig struct {
	Pair      string    `json:"pair"`
	Spec      grid.Spec `json:"spec"`
	PaperMode bool      `json:"paper_mode"`
}

// NewGridConfig creates a grid draft with arithmetic spacing.
func NewGridConfig(pair string) *GridConfig {
	return &GridConfig{
		Pair: pair,
		Spec: grid.Spec{Mode: grid.ModeArithmetic},
	}
}

func (c *GridConfig) Type() BotType       { return BotTypeGrid }
func (c *GridConfig) TradingPair() string { return c.Pair }

func (c *GridConfig) ValidateForSubmission() []Violation {
	var violations []Violation

	if c.Pair == "" {
		violations = append(violations, Violation{Field: "pair", Constraint: "pair is required"})
	}

	violations = append(violations, structViolations("spec", &c.Spec)...)

	if c.Spec.UpperPrice > 0 && c.Spec.LowerPrice > 0 && c.Spec.UpperPrice <= c.Spec.LowerPrice {
		violations = append(violations, Violation{
			Field:      "spec.upper_price",
			Constraint: fmt.Sprintf("must be greater than lower_price (%v), got %v", c.Spec.LowerPrice, c.Spec.UpperPrice),
		})
	}

	if !c.Spec.Mode.IsValid() {
		violations = append(violations, Violation{
			Field:      "spec.mode",
			Constraint: fmt.Sprintf("must be '%s' or '%s'", grid.ModeArithmetic, grid.ModeGeometric),
		})
	}

	return violations
}

func (c *GridConfig) Snapshot() StrategyConfig {
	out := *c
	return &out
}
