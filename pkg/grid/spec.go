package grid

// Spec holds the user-facing configuration of a grid strategy. The price
// ladder and per-level amount are derived, not stored, and recomputed on
// demand from these fields.
type Spec struct {
	LowerPrice       float64 `json:"lower_price" validate:"gt=0"`
	UpperPrice       float64 `json:"upper_price" validate:"gt=0"`
	GridCount        int     `json:"grid_count" validate:"gte=2"`
	Mode             Mode    `json:"mode"`
	InvestmentAmount float64 `json:"investment_amount" validate:"gt=0"`
	RebalanceEnabled bool    `json:"rebalance_enabled,omitempty"`

	// Optional profit/loss bounds applied to the whole grid.
	TakeProfitPercent *float64 `json:"take_profit_percent,omitempty" validate:"omitempty,gt=0"`
	StopLossPercent   *float64 `json:"stop_loss_percent,omitempty" validate:"omitempty,gt=0"`
}

// Levels computes the ordered price ladder for the spec.
func (s *Spec) Levels() ([]float64, error) {
	return Levels(s.LowerPrice, s.UpperPrice, s.GridCount, s.Mode)
}

// AmountPerGrid returns the uniform notional allocated to each level.
func (s *Spec) AmountPerGrid() float64 {
	if s.GridCount == 0 {
		return 0
	}
	return s.InvestmentAmount / float64(s.GridCount)
}
