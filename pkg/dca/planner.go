// Package dca plans the safety-order ladder for DCA trading strategies.
package dca

import (
	"fmt"
	"math"
)

// TakeProfitBasis selects the price the take-profit target is computed
// from by the execution engine.
type TakeProfitBasis string

const (
	// BasisAverageEntry targets profit over the volume-weighted average
	// of all filled orders.
	BasisAverageEntry TakeProfitBasis = "average_entry"
	// BasisBaseOrderPrice targets profit over the initial order price
	// only.
	BasisBaseOrderPrice TakeProfitBasis = "base_order_price"
)

// IsValid reports whether the basis is recognized.
func (b TakeProfitBasis) IsValid() bool {
	return b == BasisAverageEntry || b == BasisBaseOrderPrice
}

// Spec holds the user-facing configuration of a DCA strategy.
type Spec struct {
	BaseOrderSize          float64         `json:"base_order_size" validate:"gt=0"`
	SafetyOrderSize        float64         `json:"safety_order_size" validate:"gt=0"`
	SafetyOrderStepPercent float64         `json:"safety_order_step_percent" validate:"gt=0"`
	SafetyOrderStepScale   float64         `json:"safety_order_step_scale" validate:"gte=0"`
	SafetyOrderVolumeScale float64         `json:"safety_order_volume_scale" validate:"gte=0"`
	MaxSafetyOrders        int             `json:"max_safety_orders" validate:"gte=0"`
	TakeProfitPercent      float64         `json:"take_profit_percent" validate:"gt=0"`
	TakeProfitBasis        TakeProfitBasis `json:"take_profit_basis"`

	StopLossPercent          *float64 `json:"stop_loss_percent,omitempty" validate:"omitempty,gt=0"`
	TrailingTakeProfit       bool     `json:"trailing_take_profit,omitempty"`
	TrailingDeviationPercent *float64 `json:"trailing_deviation_percent,omitempty" validate:"omitempty,gt=0"`

	ReentryWaitMinutes int `json:"reentry_wait_minutes" validate:"gte=0"`
}

// SafetyOrder is one planned follow-up purchase. Index is 1-based.
// PriceDeviationPercent is the drop that triggers the order, measured
// from the previous trigger when the step scale is not 1.
type SafetyOrder struct {
	Index                 int     `json:"index"`
	PriceDeviationPercent float64 `json:"price_deviation_percent"`
	OrderSize             float64 `json:"order_size"`
}

// Plan derives the safety-order ladder from the spec. Deviations scale
// geometrically by the step scale, sizes by the volume scale:
//
//	deviation(i) = step_percent * step_scale^(i-1)
//	size(i)      = safety_order_size * volume_scale^(i-1)
//
// With both scales at 1 the ladder is uniform. Out-of-domain input
// returns an error rather than a silently adjusted plan.
func Plan(spec Spec) ([]SafetyOrder, error) {
	if spec.BaseOrderSize <= 0 {
		return nil, fmt.Errorf("base order size must be positive, got: %f", spec.BaseOrderSize)
	}
	if spec.SafetyOrderSize <= 0 {
		return nil, fmt.Errorf("safety order size must be positive, got: %f", spec.SafetyOrderSize)
	}
	if spec.SafetyOrderStepPercent <= 0 {
		return nil, fmt.Errorf("safety order step percent must be positive, got: %f", spec.SafetyOrderStepPercent)
	}
	if spec.SafetyOrderStepScale < 0 {
		return nil, fmt.Errorf("safety order step scale must be non-negative, got: %f", spec.SafetyOrderStepScale)
	}
	if spec.SafetyOrderVolumeScale < 0 {
		return nil, fmt.Errorf("safety order volume scale must be non-negative, got: %f", spec.SafetyOrderVolumeScale)
	}
	if spec.MaxSafetyOrders < 0 {
		return nil, fmt.Errorf("max safety orders must be non-negative, got: %d", spec.MaxSafetyOrders)
	}

	orders := make([]SafetyOrder, 0, spec.MaxSafetyOrders)
	for i := 1; i <= spec.MaxSafetyOrders; i++ {
		orders = append(orders, SafetyOrder{
			Index:                 i,
			PriceDeviationPercent: spec.SafetyOrderStepPercent * math.Pow(spec.SafetyOrderStepScale, float64(i-1)),
			OrderSize:             spec.SafetyOrderSize * math.Pow(spec.SafetyOrderVolumeScale, float64(i-1)),
		})
	}

	return orders, nil
}

// RequiredCapital returns the cumulative capital deployed after the base
// order and the first k safety orders of the plan.
func RequiredCapital(spec Spec, plan []SafetyOrder, k int) float64 {
	total := spec.BaseOrderSize
	for i := 0; i < k && i < len(plan); i++ {
		total += plan[i].OrderSize
	}
	return total
}

// MaxRequiredCapital returns the worst-case capital requirement: the base
// order plus every safety order filled.
func (s *Spec) MaxRequiredCapital() (float64, error) {
	plan, err := Plan(*s)
	if err != nil {
		return 0, err
	}
	return RequiredCapital(*s, plan, len(plan)), nil
}

// CapitalWarning reports a human-readable warning when the worst-case
// capital requirement exceeds the available balance. Capital availability
// is an external account concern, so this is advisory, never a hard
// validation error. An empty string means no warning.
func (s *Spec) CapitalWarning(availableBalance float64) string {
	if availableBalance <= 0 {
		return ""
	}
	required, err := s.MaxRequiredCapital()
	if err != nil {
		return ""
	}
	if required > availableBalance {
		return fmt.Sprintf("worst-case capital requirement %.2f exceeds available balance %.2f", required, availableBalance)
	}
	return ""
}
