package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/pkg/dca"
)

// ExcelReporter writes backtest reports as a workbook: one sheet for the
// result summary, one for the grid/DCA ladder when the strategy has one.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

type excelStyles struct {
	header int
	number int
}

// WriteBacktestXLSX writes the backtest summary to path. gridLevels and
// dcaPlan are optional; when present they get their own sheets.
func (r *ExcelReporter) WriteBacktestXLSX(result *backtest.Result, gridLevels []float64, dcaPlan []dca.SafetyOrder, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)

	styles, err := r.createStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, result, styles); err != nil {
		return err
	}

	if len(gridLevels) > 0 {
		if err := r.writeGridSheet(fx, gridLevels, styles); err != nil {
			return err
		}
	}
	if len(dcaPlan) > 0 {
		if err := r.writeDCASheet(fx, dcaPlan, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.number, err = fx.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	rows := []struct {
		label string
		value float64
	}{
		{"Initial Balance", result.InitialBalance},
		{"Final Balance", result.FinalBalance},
		{"Total Return %", result.TotalReturn * 100},
		{"Max Drawdown %", result.MaxDrawdown * 100},
		{"Win Rate %", result.WinRate * 100},
		{"Trade Count", float64(result.TradeCount)},
		{"Total Fees", result.TotalFees},
	}

	fx.SetCellValue(sheet, "A1", "Metric")
	fx.SetCellValue(sheet, "B1", "Value")
	fx.SetCellStyle(sheet, "A1", "B1", styles.header)

	for i, row := range rows {
		cellA := fmt.Sprintf("A%d", i+2)
		cellB := fmt.Sprintf("B%d", i+2)
		fx.SetCellValue(sheet, cellA, row.label)
		fx.SetCellValue(sheet, cellB, row.value)
		fx.SetCellStyle(sheet, cellB, cellB, styles.number)
	}

	return fx.SetColWidth(sheet, "A", "B", 20)
}

func (r *ExcelReporter) writeGridSheet(fx *excelize.File, levels []float64, styles excelStyles) error {
	const sheet = "Grid Levels"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}

	fx.SetCellValue(sheet, "A1", "Level")
	fx.SetCellValue(sheet, "B1", "Price")
	fx.SetCellStyle(sheet, "A1", "B1", styles.header)

	for i, level := range levels {
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), i+1)
		cell := fmt.Sprintf("B%d", i+2)
		fx.SetCellValue(sheet, cell, level)
		fx.SetCellStyle(sheet, cell, cell, styles.number)
	}

	return fx.SetColWidth(sheet, "A", "B", 16)
}

func (r *ExcelReporter) writeDCASheet(fx *excelize.File, plan []dca.SafetyOrder, styles excelStyles) error {
	const sheet = "Safety Orders"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}

	fx.SetCellValue(sheet, "A1", "Order")
	fx.SetCellValue(sheet, "B1", "Deviation %")
	fx.SetCellValue(sheet, "C1", "Size")
	fx.SetCellStyle(sheet, "A1", "C1", styles.header)

	for i, so := range plan {
		row := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), so.Index)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), so.PriceDeviationPercent)
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", row), so.OrderSize)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), styles.number)
	}

	return fx.SetColWidth(sheet, "A", "C", 16)
}
