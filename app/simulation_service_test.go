package app

import (
	"context"
	"testing"

	"schedrisk/adapters/montecarlo"
	"schedrisk/domain/risk"
	"schedrisk/internal/testkit"
	"schedrisk/ports"
)

func newService(store ports.ResultStore) *SimulationService {
	return NewSimulationService(montecarlo.NewEngine(montecarlo.Config{}), ports.NewSeededRNG(), store, nil)
}

func TestSimulationService_Run(t *testing.T) {
	s := testkit.ChainScenario(10, 5, 8)
	result, err := newService(nil).Run(context.Background(), SimulationRequest{
		Scenario: s,
		Trials:   100,
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output.Duration.P50 != 23 {
		t.Errorf("p50 = %g, want 23", result.Output.Duration.P50)
	}
	if result.RunID == "" {
		t.Error("missing run ID")
	}
	if result.Scenario != "chain" {
		t.Errorf("scenario = %q, want chain", result.Scenario)
	}
}

func TestSimulationService_NilScenario(t *testing.T) {
	if _, err := newService(nil).Run(context.Background(), SimulationRequest{}); err == nil {
		t.Fatal("expected error for nil scenario")
	}
}

func TestSimulationService_TrialResolution(t *testing.T) {
	s := testkit.ChainScenario(1)

	// No trials anywhere: error.
	if _, err := newService(nil).Run(context.Background(), SimulationRequest{Scenario: s, Seed: 1}); err == nil {
		t.Error("expected error when no trial count is available")
	}

	// Scenario trials used when request leaves them zero.
	s.Trials = 40
	result, err := newService(nil).Run(context.Background(), SimulationRequest{Scenario: s, Seed: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output.Trials != 40 {
		t.Errorf("trials = %d, want scenario's 40", result.Output.Trials)
	}

	// Request overrides scenario.
	result, err = newService(nil).Run(context.Background(), SimulationRequest{Scenario: s, Trials: 25, Seed: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output.Trials != 25 {
		t.Errorf("trials = %d, want request's 25", result.Output.Trials)
	}
}

func TestSimulationService_Persist(t *testing.T) {
	store := testkit.NewInMemoryResultStore()
	s := testkit.ChainScenario(10, 5)
	result, err := newService(store).Run(context.Background(), SimulationRequest{
		Scenario: s,
		Trials:   50,
		Seed:     3,
		Persist:  true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("stored %d summaries, want 1", store.Len())
	}

	summary, err := store.GetRunSummary(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("GetRunSummary: %v", err)
	}
	if summary.Duration != result.Output.Duration {
		t.Errorf("persisted summary %+v != output %+v", summary.Duration, result.Output.Duration)
	}
	if summary.Criticality["A1"] != 100 {
		t.Errorf("persisted criticality(A1) = %g, want 100", summary.Criticality["A1"])
	}
	if summary.Seed != 3 {
		t.Errorf("persisted seed = %d, want 3", summary.Seed)
	}
}

func TestSimulationService_CorrelatedRunReproducible(t *testing.T) {
	distA, _ := risk.NewPERT(8, 10, 16)
	distB, _ := risk.NewPERT(8, 10, 16)
	s := testkit.TwoPathScenario(distA, distB)
	s.Correlation = risk.CorrelationSpec{
		Mode: risk.CorrelationExplicit,
		Entries: []risk.CorrelationEntry{
			{ActivityA: "a", ActivityB: "b", Coefficient: 0.8},
		},
	}

	svc := newService(nil)
	req := SimulationRequest{Scenario: s, Trials: 400, Seed: 77}

	first, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range first.Output.TotalDurations {
		if first.Output.TotalDurations[i] != second.Output.TotalDurations[i] {
			t.Fatalf("trial %d differs across identical correlated runs", i)
		}
	}
}

func TestPortfolioSweep(t *testing.T) {
	store := testkit.NewInMemoryResultStore()
	sweep := NewPortfolioSweepService(newService(store))

	scenarios := []*risk.Scenario{
		testkit.RandomNetwork(1, 15),
		testkit.RandomNetwork(2, 15),
		testkit.RandomNetwork(3, 15),
	}
	req := SweepRequest{
		Scenarios: scenarios,
		BaseSeed:  500,
		Trials:    200,
		Persist:   true,
	}

	result, err := sweep.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(result.Results))
	}
	for i, r := range result.Results {
		if r == nil {
			t.Fatalf("result %d missing", i)
		}
		if r.Scenario != scenarios[i].Name {
			t.Errorf("result %d scenario = %q, want %q (request order)", i, r.Scenario, scenarios[i].Name)
		}
	}
	if store.Len() != 3 {
		t.Errorf("stored %d summaries, want 3", store.Len())
	}

	// Same base seed reproduces every scenario's totals.
	again, err := sweep.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range result.Results {
		a := result.Results[i].Output.TotalDurations
		b := again.Results[i].Output.TotalDurations
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("scenario %d trial %d differs across identical sweeps", i, j)
			}
		}
	}
}

func TestPortfolioSweep_Empty(t *testing.T) {
	sweep := NewPortfolioSweepService(newService(nil))
	if _, err := sweep.Run(context.Background(), SweepRequest{}); err == nil {
		t.Fatal("expected error for empty sweep")
	}
}
