package ports

import (
	"context"

	"schedrisk/domain/risk"
)

// ReportWriter renders a simulation output for human consumption
// (percentile tables, criticality highlighting, histogram).
type ReportWriter interface {
	// WriteReport renders out under the scenario's name and returns the
	// location of the produced artifact.
	WriteReport(ctx context.Context, scenario string, out *risk.SimulationOutput) (string, error)
}

// ScenarioSource loads simulation scenarios from an external representation.
type ScenarioSource interface {
	LoadScenario(ctx context.Context, path string) (*risk.Scenario, error)
}
