package backtest

import (
	"fmt"

	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// Params carries the strategy parameters of a backtest request. Fields
// irrelevant to the bot type are omitted from the wire form.
type Params struct {
	EntryRules *strategy.RuleGroup `json:"entry_rules,omitempty"`
	ExitRules  *strategy.RuleGroup `json:"exit_rules,omitempty"`

	OrderAmount       float64 `json:"order_amount,omitempty"`
	TakeProfitPercent float64 `json:"take_profit_percent,omitempty"`
	StopLossPercent   float64 `json:"stop_loss_percent,omitempty"`

	DCASpec  *dca.Spec            `json:"dca_spec,omitempty"`
	GridSpec *gridParams          `json:"grid_spec,omitempty"`
	Risk     *strategy.RiskProfile `json:"risk,omitempty"`
}

// gridParams is the grid section of a backtest request: the spec plus
// the derived ladder, so the engine does not re-derive it.
type gridParams struct {
	LowerPrice       float64   `json:"lower_price"`
	UpperPrice       float64   `json:"upper_price"`
	GridCount        int       `json:"grid_count"`
	Mode             string    `json:"mode"`
	InvestmentAmount float64   `json:"investment_amount"`
	Levels           []float64 `json:"levels"`
	AmountPerGrid    float64   `json:"amount_per_grid"`
}

// Request is the backtest submission contract.
type Request struct {
	BotType        strategy.BotType `json:"bot_type"`
	Pair           string           `json:"pair"`
	Params         Params           `json:"params"`
	InitialBalance float64          `json:"initial_balance"`
	FeeRate        float64          `json:"fee_rate"`
	Timeframe      string           `json:"timeframe,omitempty"`
}

// Result is the engine's summary of one completed backtest.
type Result struct {
	TotalReturn    float64 `json:"total_return"`
	WinRate        float64 `json:"win_rate"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	TradeCount     int     `json:"trade_count"`
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	TotalFees      float64 `json:"total_fees"`
}

// Response is the backtest service's wire response.
type Response struct {
	Success  bool    `json:"success"`
	Backtest *Result `json:"backtest,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// BuildRequest snapshots a validated config into a backtest request.
// The request owns its data; later draft edits do not leak into a
// pending submission.
func BuildRequest(cfg strategy.StrategyConfig, initialBalance, feeRate float64) (Request, error) {
	snapshot := cfg.Snapshot()

	req := Request{
		BotType:        snapshot.Type(),
		Pair:           snapshot.TradingPair(),
		InitialBalance: initialBalance,
		FeeRate:        feeRate,
	}

	switch c := snapshot.(type) {
	case *strategy.SignalConfig:
		req.Timeframe = c.Timeframe
		req.Params.EntryRules = &c.Entry
		req.Params.ExitRules = &c.Exit
		req.Params.OrderAmount = c.OrderAmount
		req.Params.Risk = &c.Risk
		if c.Risk.TakeProfitPercent != nil {
			req.Params.TakeProfitPercent = *c.Risk.TakeProfitPercent
		}
		if c.Risk.StopLossPercent != nil {
			req.Params.StopLossPercent = *c.Risk.StopLossPercent
		}

	case *strategy.DCAConfig:
		spec := c.Spec
		req.Params.DCASpec = &spec
		req.Params.TakeProfitPercent = spec.TakeProfitPercent
		if spec.StopLossPercent != nil {
			req.Params.StopLossPercent = *spec.StopLossPercent
		}
		req.Params.Risk = &c.Risk

	case *strategy.GridConfig:
		levels, err := c.Spec.Levels()
		if err != nil {
			return Request{}, fmt.Errorf("could not derive grid levels: %w", err)
		}
		req.Params.GridSpec = &gridParams{
			LowerPrice:       c.Spec.LowerPrice,
			UpperPrice:       c.Spec.UpperPrice,
			GridCount:        c.Spec.GridCount,
			Mode:             string(c.Spec.Mode),
			InvestmentAmount: c.Spec.InvestmentAmount,
			Levels:           levels,
			AmountPerGrid:    c.Spec.AmountPerGrid(),
		}
		if c.Spec.TakeProfitPercent != nil {
			req.Params.TakeProfitPercent = *c.Spec.TakeProfitPercent
		}
		if c.Spec.StopLossPercent != nil {
			req.Params.StopLossPercent = *c.Spec.StopLossPercent
		}

	default:
		return Request{}, fmt.Errorf("unknown strategy config type %T", cfg)
	}

	return req, nil
}
