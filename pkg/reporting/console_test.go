package reporting

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

func TestPrintGridPreview(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.PrintGridPreview([]float64{100, 150, 200}, 250)

	out := buf.String()
	assert.Contains(t, out, "Grid Preview")
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "200")
	assert.Contains(t, out, "250.00")
}

func TestPrintDCAPlan(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	spec := dca.Spec{BaseOrderSize: 100, SafetyOrderSize: 50}
	plan := []dca.SafetyOrder{
		{Index: 1, PriceDeviationPercent: 2, OrderSize: 50},
		{Index: 2, PriceDeviationPercent: 2, OrderSize: 50},
	}
	r.PrintDCAPlan(spec, plan)

	out := buf.String()
	assert.Contains(t, out, "DCA Plan")
	assert.Contains(t, out, "base")
	assert.Contains(t, out, "SO 2")
	// Cumulative capital after the second safety order.
	assert.Contains(t, out, "200.00")
}

func TestPrintBacktestResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.PrintBacktestResult(&backtest.Result{
		InitialBalance: 1000,
		FinalBalance:   1125,
		TotalReturn:    0.125,
		WinRate:        0.6,
		TradeCount:     30,
	})

	out := buf.String()
	assert.Contains(t, out, "Backtest Results")
	assert.Contains(t, out, "$1125.00")
	assert.Contains(t, out, "12.50%")
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.PrintViolations([]strategy.Violation{
		{Field: "pair", Constraint: "pair is required"},
	})
	assert.Contains(t, buf.String(), "pair: pair is required")
}
