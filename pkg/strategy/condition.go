package strategy

import (
	"math"

	"github.com/google/uuid"
)

// Comparator identifies how an indicator value is compared when a
// condition is evaluated by the execution engine.
type Comparator string

const (
	ComparatorCrossesAbove Comparator = "crosses_above"
	ComparatorCrossesBelow Comparator = "crosses_below"
	ComparatorGreaterThan  Comparator = "greater_than"
	ComparatorLessThan     Comparator = "less_than"
	ComparatorEquals       Comparator = "equals"
	ComparatorRising       Comparator = "rising"
	ComparatorFalling      Comparator = "falling"
)

// Comparators is the fixed built-in vocabulary, used as the fallback when
// the indicator catalog service does not supply one.
var Comparators = []Comparator{
	ComparatorCrossesAbove,
	ComparatorCrossesBelow,
	ComparatorGreaterThan,
	ComparatorLessThan,
	ComparatorEquals,
	ComparatorRising,
	ComparatorFalling,
}

// IsValid reports whether the comparator is a recognized member of the
// vocabulary.
func (c Comparator) IsValid() bool {
	switch c {
	case ComparatorCrossesAbove, ComparatorCrossesBelow,
		ComparatorGreaterThan, ComparatorLessThan, ComparatorEquals,
		ComparatorRising, ComparatorFalling:
		return true
	}
	return false
}

// RequiresThreshold reports whether the comparator compares against a
// numeric threshold. Trend comparators (rising/falling) ignore it.
func (c Comparator) RequiresThreshold() bool {
	switch c {
	case ComparatorRising, ComparatorFalling:
		return false
	}
	return true
}

// Default values for a freshly added condition. Catalog-agnostic: RSI is
// part of the built-in fallback catalog, so the default is usable even
// before the catalog fetch completes.
const (
	DefaultConditionIndicator = "rsi"
	DefaultConditionPeriod    = 14.0
	DefaultConditionValue     = 30.0
)

// Condition is the atomic strategy rule: one indicator plus parameters,
// compared against a threshold.
type Condition struct {
	ID         string             `json:"id"`
	Indicator  string             `json:"indicator"`
	Params     map[string]float64 `json:"params,omitempty"`
	Comparator Comparator         `json:"comparator"`
	Value      float64            `json:"value"`
}

// NewDefaultCondition creates a condition with safe defaults and a fresh
// id. The id is stable for the lifetime of the editing session.
func NewDefaultCondition() Condition {
	return Condition{
		ID:         uuid.New().String(),
		Indicator:  DefaultConditionIndicator,
		Params:     map[string]float64{"period": DefaultConditionPeriod},
		Comparator: ComparatorLessThan,
		Value:      DefaultConditionValue,
	}
}

// Validate checks the condition's structural invariants. Catalog-dependent
// checks (indicator existence, parameter names) live in
// ValidateAgainstCatalog because the catalog may not be loaded yet.
func (c *Condition) Validate(field string) []Violation {
	var violations []Violation

	if c.Indicator == "" {
		violations = append(violations, Violation{
			Field:      field + ".indicator",
			Constraint: "indicator is required",
		})
	}

	if !c.Comparator.IsValid() {
		violations = append(violations, Violation{
			Field:      field + ".comparator",
			Constraint: "comparator must be one of the recognized vocabulary",
		})
	}

	if c.Comparator.RequiresThreshold() && (math.IsNaN(c.Value) || math.IsInf(c.Value, 0)) {
		violations = append(violations, Violation{
			Field:      field + ".value",
			Constraint: "value must be a finite number for threshold comparators",
		})
	}

	return violations
}

// clone returns a deep copy so preset application and snapshots never
// alias the draft's params map.
func (c Condition) clone() Condition {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return out
}
