// Package reporting renders strategy previews and backtest results to
// the console, JSON files and Excel workbooks.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// ConsoleReporter writes previews and results as rounded tables.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a reporter writing to w.
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// PrintGridPreview renders the grid ladder with the uniform per-level
// amount.
func (r *ConsoleReporter) PrintGridPreview(levels []float64, amountPerGrid float64) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Grid Preview")
	t.AppendHeader(table.Row{"#", "Price", "Amount"})

	for i, level := range levels {
		t.AppendRow(table.Row{i + 1, fmt.Sprintf("%.8g", level), fmt.Sprintf("%.2f", amountPerGrid)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// PrintDCAPlan renders the safety-order ladder and the cumulative
// capital requirement per rung.
func (r *ConsoleReporter) PrintDCAPlan(spec dca.Spec, plan []dca.SafetyOrder) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("DCA Plan")
	t.AppendHeader(table.Row{"Order", "Deviation %", "Size", "Cumulative Capital"})

	t.AppendRow(table.Row{"base", "-", fmt.Sprintf("%.2f", spec.BaseOrderSize), fmt.Sprintf("%.2f", spec.BaseOrderSize)})
	for _, so := range plan {
		t.AppendRow(table.Row{
			fmt.Sprintf("SO %d", so.Index),
			fmt.Sprintf("%.4g", so.PriceDeviationPercent),
			fmt.Sprintf("%.2f", so.OrderSize),
			fmt.Sprintf("%.2f", dca.RequiredCapital(spec, plan, so.Index)),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// PrintBacktestResult renders the engine's summary of one backtest.
func (r *ConsoleReporter) PrintBacktestResult(result *backtest.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Backtest Results")

	t.AppendRows([]table.Row{
		{"💰 Initial Balance", fmt.Sprintf("$%.2f", result.InitialBalance)},
		{"💰 Final Balance", fmt.Sprintf("$%.2f", result.FinalBalance)},
		{"📈 Total Return", fmt.Sprintf("%.2f%%", result.TotalReturn*100)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdown*100)},
		{"✅ Win Rate", fmt.Sprintf("%.1f%%", result.WinRate*100)},
		{"🔄 Trades", result.TradeCount},
		{"💸 Total Fees", fmt.Sprintf("$%.2f", result.TotalFees)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// PrintViolations lists submission violations, field-scoped.
func (r *ConsoleReporter) PrintViolations(violations []strategy.Violation) {
	for _, v := range violations {
		fmt.Fprintf(r.out, "  ❌ %s\n", v)
	}
}
