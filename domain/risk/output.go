package risk

import (
	"time"

	"schedrisk/domain/core"
)

// DurationSummary captures the distribution of a duration-like quantity
// across trials.
type DurationSummary struct {
	P10    float64 `json:"p10"`
	P50    float64 `json:"p50"`
	P80    float64 `json:"p80"`
	P90    float64 `json:"p90"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ActivityRisk is the per-activity view of a simulation run.
type ActivityRisk struct {
	ActivityID core.ActivityID `json:"activity_id"`
	// Criticality is the percentage of trials in which the activity lay on
	// the duration-determining path.
	Criticality float64 `json:"criticality"`
	// Sensitivity is the Pearson correlation between the activity's sampled
	// durations and the total project durations. Zero-variance activities
	// report 0, never NaN.
	Sensitivity float64 `json:"sensitivity"`
	// Finish summarizes the activity's early-finish times across trials.
	Finish DurationSummary `json:"finish"`
}

// Histogram is an automatically binned view of the total-duration samples.
// Edges has one more element than Counts; bin i covers [Edges[i], Edges[i+1])
// with the final bin closed on the right.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// SimulationOutput is the complete, immutable result of one simulate() call.
// Ownership passes to the caller on return.
type SimulationOutput struct {
	RunID core.RunID `json:"run_id"`
	// TotalDurations holds the per-trial total project duration samples.
	TotalDurations []float64       `json:"total_durations"`
	Duration       DurationSummary `json:"duration"`
	Activities     []ActivityRisk  `json:"activities"`
	Histogram      Histogram       `json:"histogram"`
	Trials         int             `json:"trials"`
	Seed           int64           `json:"seed"`
	Elapsed        time.Duration   `json:"elapsed"`
}

// ActivityRiskFor returns the per-activity result for id, or nil when the
// activity was not part of the run.
func (o *SimulationOutput) ActivityRiskFor(id core.ActivityID) *ActivityRisk {
	for i := range o.Activities {
		if o.Activities[i].ActivityID == id {
			return &o.Activities[i]
		}
	}
	return nil
}

// RunSummary is the persisted subset of a simulation run: headline
// percentiles plus the per-activity criticality and sensitivity maps.
type RunSummary struct {
	RunID       core.RunID                  `json:"run_id" db:"run_id"`
	Scenario    string                      `json:"scenario" db:"scenario"`
	Trials      int                         `json:"trials" db:"trials"`
	Seed        int64                       `json:"seed" db:"seed"`
	ElapsedMs   int64                       `json:"elapsed_ms" db:"elapsed_ms"`
	Duration    DurationSummary             `json:"duration"`
	Criticality map[core.ActivityID]float64 `json:"criticality"`
	Sensitivity map[core.ActivityID]float64 `json:"sensitivity"`
	CreatedAt   time.Time                   `json:"created_at" db:"created_at"`
}

// NewRunSummary projects a SimulationOutput into its persisted form.
func NewRunSummary(scenario string, out *SimulationOutput) RunSummary {
	criticality := make(map[core.ActivityID]float64, len(out.Activities))
	sensitivity := make(map[core.ActivityID]float64, len(out.Activities))
	for _, a := range out.Activities {
		criticality[a.ActivityID] = a.Criticality
		sensitivity[a.ActivityID] = a.Sensitivity
	}
	return RunSummary{
		RunID:       out.RunID,
		Scenario:    scenario,
		Trials:      out.Trials,
		Seed:        out.Seed,
		ElapsedMs:   out.Elapsed.Milliseconds(),
		Duration:    out.Duration,
		Criticality: criticality,
		Sensitivity: sensitivity,
		CreatedAt:   time.Now().UTC(),
	}
}
