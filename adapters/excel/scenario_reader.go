// Package excel reads simulation scenarios from workbooks and writes risk
// reports back out, using the sheet conventions documented on each type.
package excel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
	"schedrisk/domain/schedule"
	apperrors "schedrisk/internal/errors"
)

// Sheet names a scenario workbook may contain. Activities is required;
// the rest are optional.
const (
	sheetActivities    = "Activities"
	sheetDependencies  = "Dependencies"
	sheetDistributions = "Distributions"
	sheetCorrelations  = "Correlations"
	sheetSettings      = "Settings"
)

// ScenarioReader loads a scenario workbook into the domain input model.
//
// Expected columns (first row is a header):
//
//	Activities:    ID, Name, Duration, WBS, Resources (semicolon separated)
//	Dependencies:  Predecessor, Successor, Kind, Lag
//	Distributions: ActivityID, Kind, Min, Mode, Max, Mean, StdDev
//	Correlations:  ActivityA, ActivityB, Coefficient
//	Settings:      Key, Value rows (trials, seed, correlation_mode,
//	               default_correlation, same_wbs_correlation,
//	               sibling_wbs_correlation, shared_resource_correlation)
type ScenarioReader struct {
	filePath string
}

// NewScenarioReader creates a reader for the given workbook path.
func NewScenarioReader(filePath string) *ScenarioReader {
	return &ScenarioReader{filePath: filePath}
}

// LoadScenario implements ports.ScenarioSource.
func (r *ScenarioReader) LoadScenario(_ context.Context, path string) (*risk.Scenario, error) {
	if path == "" {
		path = r.filePath
	}
	return NewScenarioReader(path).Read()
}

// Read parses the workbook into a validated scenario.
func (r *ScenarioReader) Read() (*risk.Scenario, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.ScenarioError(fmt.Sprintf("scenario file not found: %s", r.filePath))
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario workbook: %w", err)
	}
	defer f.Close()

	scenario := &risk.Scenario{
		Name:          scenarioName(r.filePath),
		Distributions: risk.ActivityDistributions{},
		Correlation:   risk.CorrelationSpec{Mode: risk.CorrelationNone},
	}

	if scenario.Activities, err = r.readActivities(f); err != nil {
		return nil, err
	}
	if scenario.Dependencies, err = r.readDependencies(f); err != nil {
		return nil, err
	}
	if scenario.Distributions, err = r.readDistributions(f); err != nil {
		return nil, err
	}
	if scenario.Correlation.Entries, err = r.readCorrelations(f); err != nil {
		return nil, err
	}
	if err = r.applySettings(f, scenario); err != nil {
		return nil, err
	}
	if len(scenario.Correlation.Entries) > 0 && scenario.Correlation.Mode == risk.CorrelationNone {
		scenario.Correlation.Mode = risk.CorrelationExplicit
	}

	if err := scenario.Validate(); err != nil {
		return nil, apperrors.Wrapf(err, "scenario %q failed validation", scenario.Name)
	}
	return scenario, nil
}

func (r *ScenarioReader) readActivities(f *excelize.File) ([]schedule.Activity, error) {
	rows, err := f.GetRows(sheetActivities)
	if err != nil {
		return nil, apperrors.ScenarioError("scenario workbook has no Activities sheet")
	}
	var activities []schedule.Activity
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 3 {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Activities row %d needs ID, Name, Duration", i+1))
		}
		duration, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Activities row %d has non-integer duration %q", i+1, row[2]))
		}
		a := schedule.Activity{
			ID:       core.ActivityID(strings.TrimSpace(row[0])),
			Name:     strings.TrimSpace(row[1]),
			Duration: duration,
		}
		if len(row) > 3 {
			a.WBSPath = strings.TrimSpace(row[3])
		}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			for _, res := range strings.Split(row[4], ";") {
				if res = strings.TrimSpace(res); res != "" {
					a.Resources = append(a.Resources, core.ResourceID(res))
				}
			}
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (r *ScenarioReader) readDependencies(f *excelize.File) ([]schedule.Dependency, error) {
	rows, err := f.GetRows(sheetDependencies)
	if err != nil {
		return nil, nil // optional sheet
	}
	var dependencies []schedule.Dependency
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 2 {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Dependencies row %d needs Predecessor and Successor", i+1))
		}
		d := schedule.Dependency{
			Predecessor: core.ActivityID(strings.TrimSpace(row[0])),
			Successor:   core.ActivityID(strings.TrimSpace(row[1])),
			Kind:        schedule.FinishToStart,
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			d.Kind = schedule.DependencyKind(strings.ToUpper(strings.TrimSpace(row[2])))
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			lag, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
			if err != nil {
				return nil, apperrors.ScenarioError(fmt.Sprintf("Dependencies row %d has non-numeric lag %q", i+1, row[3]))
			}
			d.Lag = lag
		}
		dependencies = append(dependencies, d)
	}
	return dependencies, nil
}

func (r *ScenarioReader) readDistributions(f *excelize.File) (risk.ActivityDistributions, error) {
	dists := risk.ActivityDistributions{}
	rows, err := f.GetRows(sheetDistributions)
	if err != nil {
		return dists, nil // optional sheet
	}
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 2 {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Distributions row %d needs ActivityID and Kind", i+1))
		}
		id := core.ActivityID(strings.TrimSpace(row[0]))
		d := risk.Distribution{Kind: risk.DistributionKind(strings.ToLower(strings.TrimSpace(row[1])))}
		cells := make([]float64, 5)
		for c := 0; c < 5; c++ {
			col := c + 2
			if len(row) <= col || strings.TrimSpace(row[col]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, apperrors.ScenarioError(fmt.Sprintf("Distributions row %d column %d has non-numeric value %q", i+1, col+1, row[col]))
			}
			cells[c] = v
		}
		d.Min, d.Mode, d.Max, d.Mean, d.StdDev = cells[0], cells[1], cells[2], cells[3], cells[4]
		if err := d.Validate(); err != nil {
			return nil, apperrors.Wrapf(err, "Distributions row %d", i+1)
		}
		dists[id] = d
	}
	return dists, nil
}

func (r *ScenarioReader) readCorrelations(f *excelize.File) ([]risk.CorrelationEntry, error) {
	rows, err := f.GetRows(sheetCorrelations)
	if err != nil {
		return nil, nil // optional sheet
	}
	var entries []risk.CorrelationEntry
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 3 {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Correlations row %d needs ActivityA, ActivityB, Coefficient", i+1))
		}
		coeff, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, apperrors.ScenarioError(fmt.Sprintf("Correlations row %d has non-numeric coefficient %q", i+1, row[2]))
		}
		entry, err := risk.NewCorrelationEntry(
			core.ActivityID(strings.TrimSpace(row[0])),
			core.ActivityID(strings.TrimSpace(row[1])),
			coeff,
		)
		if err != nil {
			return nil, apperrors.Wrapf(err, "Correlations row %d", i+1)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *ScenarioReader) applySettings(f *excelize.File, scenario *risk.Scenario) error {
	rows, err := f.GetRows(sheetSettings)
	if err != nil {
		return nil // optional sheet
	}
	for i, row := range rows {
		if isBlank(row) || len(row) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row[0]))
		value := strings.TrimSpace(row[1])
		switch key {
		case "trials":
			n, err := strconv.Atoi(value)
			if err != nil {
				return apperrors.ScenarioError(fmt.Sprintf("Settings row %d: trials %q is not an integer", i+1, value))
			}
			scenario.Trials = n
		case "seed":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return apperrors.ScenarioError(fmt.Sprintf("Settings row %d: seed %q is not an integer", i+1, value))
			}
			scenario.Seed = n
		case "correlation_mode":
			scenario.Correlation.Mode = risk.CorrelationMode(strings.ToLower(value))
		case "default_correlation":
			scenario.Correlation.DefaultCorrelation, err = parseSettingFloat(i, key, value)
		case "same_wbs_correlation":
			scenario.Correlation.SameWBSCorrelation, err = parseSettingFloat(i, key, value)
		case "sibling_wbs_correlation":
			scenario.Correlation.SiblingWBSCorrelation, err = parseSettingFloat(i, key, value)
		case "shared_resource_correlation":
			scenario.Correlation.SharedResourceCorrelation, err = parseSettingFloat(i, key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseSettingFloat(row int, key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apperrors.ScenarioError(fmt.Sprintf("Settings row %d: %s %q is not numeric", row+1, key, value))
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func scenarioName(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
