package excel

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"schedrisk/domain/risk"
	apperrors "schedrisk/internal/errors"
)

// ReportWriter renders a SimulationOutput as a workbook with Summary,
// ActivityRisk, and Histogram sheets.
type ReportWriter struct {
	outputDir string
}

// NewReportWriter creates a writer that places reports under outputDir.
func NewReportWriter(outputDir string) *ReportWriter {
	return &ReportWriter{outputDir: outputDir}
}

// WriteReport implements ports.ReportWriter. It returns the path of the
// produced workbook.
func (w *ReportWriter) WriteReport(_ context.Context, scenario string, out *risk.SimulationOutput) (string, error) {
	if out == nil {
		return "", apperrors.InvalidInput("simulation output is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, scenario, out); err != nil {
		return "", err
	}
	if err := w.writeActivityRisk(f, out); err != nil {
		return "", err
	}
	if err := w.writeHistogram(f, out); err != nil {
		return "", err
	}
	// The default sheet excelize creates is replaced by Summary.
	f.DeleteSheet("Sheet1")

	path := filepath.Join(w.outputDir, fmt.Sprintf("%s_risk.xlsx", scenario))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save risk report: %w", err)
	}
	return path, nil
}

func (w *ReportWriter) writeSummary(f *excelize.File, scenario string, out *risk.SimulationOutput) error {
	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("failed to create Summary sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Scenario", scenario},
		{"Run ID", out.RunID.String()},
		{"Trials", out.Trials},
		{"Seed", out.Seed},
		{"Elapsed ms", out.Elapsed.Milliseconds()},
		{},
		{"Statistic", "Duration"},
		{"P10", out.Duration.P10},
		{"P50", out.Duration.P50},
		{"P80", out.Duration.P80},
		{"P90", out.Duration.P90},
		{"Mean", out.Duration.Mean},
		{"StdDev", out.Duration.StdDev},
		{"Min", out.Duration.Min},
		{"Max", out.Duration.Max},
	}
	return writeRows(f, "Summary", rows)
}

func (w *ReportWriter) writeActivityRisk(f *excelize.File, out *risk.SimulationOutput) error {
	if _, err := f.NewSheet("ActivityRisk"); err != nil {
		return fmt.Errorf("failed to create ActivityRisk sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Activity", "Criticality %", "Sensitivity", "Finish P10", "Finish P50", "Finish P80", "Finish P90", "Finish Mean", "Finish StdDev", "Finish Min", "Finish Max"},
	}
	for _, a := range out.Activities {
		rows = append(rows, []interface{}{
			a.ActivityID.String(),
			a.Criticality,
			a.Sensitivity,
			a.Finish.P10,
			a.Finish.P50,
			a.Finish.P80,
			a.Finish.P90,
			a.Finish.Mean,
			a.Finish.StdDev,
			a.Finish.Min,
			a.Finish.Max,
		})
	}
	return writeRows(f, "ActivityRisk", rows)
}

func (w *ReportWriter) writeHistogram(f *excelize.File, out *risk.SimulationOutput) error {
	if _, err := f.NewSheet("Histogram"); err != nil {
		return fmt.Errorf("failed to create Histogram sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Bin Start", "Bin End", "Count"},
	}
	for i, count := range out.Histogram.Counts {
		rows = append(rows, []interface{}{
			out.Histogram.Edges[i],
			out.Histogram.Edges[i+1],
			count,
		})
	}
	return writeRows(f, "Histogram", rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
