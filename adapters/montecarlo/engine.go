// Package montecarlo implements the vectorized network Monte Carlo engine:
// it replays a CPM forward pass across every trial at once over a topology
// computed once per call, then derives duration percentiles, criticality,
// finish-time summaries, and sensitivity from the trial matrix.
package montecarlo

import (
	"math"
	"math/rand"
	"time"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
	"schedrisk/domain/schedule"
	"schedrisk/internal"
	apperrors "schedrisk/internal/errors"
)

// DefaultTolerance absorbs floating-point comparison noise in criticality
// detection. Exact equality would fail to register critical activities on
// nearly every trial once durations drift in the last bits.
const DefaultTolerance = 0.001

// Config tunes one engine instance.
type Config struct {
	// Tolerance is the absolute tolerance for criticality comparisons.
	// Zero selects DefaultTolerance. Callers simulating very large
	// duration magnitudes may need a wider value.
	Tolerance float64
}

// Engine estimates the distribution of total project duration across many
// trials. Each Simulate call owns its random source and local matrices, so
// concurrent calls on one Engine are safe without locking.
type Engine struct {
	cfg Config
	log *internal.Logger
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return &Engine{
		cfg: cfg,
		log: internal.DefaultLogger.WithComponent("montecarlo"),
	}
}

// Request carries the inputs for one simulation run. Activities and
// dependencies are referenced, never mutated. Samples optionally supplies
// pre-drawn (typically correlated) duration samples per activity; activities
// not covered by Samples draw independently from Distributions, and
// activities in neither broadcast their base duration to every trial.
type Request struct {
	Activities    []schedule.Activity
	Dependencies  []schedule.Dependency
	Distributions risk.ActivityDistributions
	Samples       map[core.ActivityID][]float64
	Trials        int
	// Seed makes the run reproducible. Zero selects a time-derived seed;
	// the seed actually used is always reported in the output.
	Seed int64
}

// Simulate validates the request, precomputes the network topology once,
// samples durations for all trials, performs a single topologically ordered
// forward pass covering every trial, and derives all output statistics.
func (e *Engine) Simulate(req Request) (*risk.SimulationOutput, error) {
	start := time.Now()

	if req.Trials <= 0 {
		return nil, apperrors.ValidationErrorf("trial count must be positive, got %d", req.Trials)
	}
	if err := schedule.ValidateNetwork(req.Activities, req.Dependencies); err != nil {
		return nil, err
	}
	if err := req.Distributions.Validate(); err != nil {
		return nil, err
	}
	nw, err := buildNetwork(req.Activities, req.Dependencies)
	if err != nil {
		return nil, err
	}
	if err := e.checkSamples(req, nw); err != nil {
		return nil, err
	}
	if nw.nonFSEdges > 0 {
		e.log.Warn("%d non-Finish-to-Start dependencies excluded from the vectorized forward pass", nw.nonFSEdges)
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	durations := e.sampleDurations(req, rng)
	earlyStart, earlyFinish := e.forwardPass(nw, durations, req.Trials)
	totals := projectDurations(earlyFinish, req.Trials)
	criticalCounts := e.traceCriticality(nw, earlyStart, earlyFinish, totals)

	out := &risk.SimulationOutput{
		RunID:          core.NewRunID(),
		TotalDurations: totals,
		Duration:       summarize(totals),
		Activities:     make([]risk.ActivityRisk, len(req.Activities)),
		Histogram:      buildHistogram(totals),
		Trials:         req.Trials,
		Seed:           seed,
	}
	for i, a := range req.Activities {
		out.Activities[i] = risk.ActivityRisk{
			ActivityID:  a.ID,
			Criticality: float64(criticalCounts[i]) / float64(req.Trials) * 100,
			Sensitivity: sensitivity(durations[i], totals),
			Finish:      summarize(earlyFinish[i]),
		}
	}
	out.Elapsed = time.Since(start)
	return out, nil
}

// checkSamples validates pre-drawn sample overrides against the activity set
// and trial count.
func (e *Engine) checkSamples(req Request, nw *network) error {
	for id, samples := range req.Samples {
		if _, ok := nw.index[id]; !ok {
			return apperrors.ValidationErrorf("samples supplied for unknown activity %q", id)
		}
		if len(samples) != req.Trials {
			return apperrors.ValidationErrorf("samples for activity %q have length %d, want %d trials", id, len(samples), req.Trials)
		}
	}
	return nil
}

// sampleDurations produces the (activities x trials) duration-sample matrix.
// Draw order follows the declared activity order so identical seeds yield
// bit-identical matrices.
func (e *Engine) sampleDurations(req Request, rng *rand.Rand) [][]float64 {
	durations := make([][]float64, len(req.Activities))
	for i, a := range req.Activities {
		row := make([]float64, req.Trials)
		if pre, ok := req.Samples[a.ID]; ok {
			copy(row, pre)
		} else if dist, ok := req.Distributions[a.ID]; ok {
			for t := range row {
				row[t] = dist.Sample(rng)
			}
		} else {
			base := float64(a.Duration)
			for t := range row {
				row[t] = base
			}
		}
		durations[i] = row
	}
	return durations
}

// forwardPass computes early-start and early-finish for every activity and
// every trial in one topologically ordered sweep, treating the trial axis as
// a batch: each step updates the whole trial vector before moving on.
func (e *Engine) forwardPass(nw *network, durations [][]float64, trials int) (earlyStart, earlyFinish [][]float64) {
	n := len(nw.order)
	earlyStart = make([][]float64, n)
	earlyFinish = make([][]float64, n)

	for _, i := range nw.topo {
		es := make([]float64, trials)
		for k, j := range nw.preds[i] {
			lag := nw.lag[i][j]
			predFinish := earlyFinish[j]
			if k == 0 {
				for t := 0; t < trials; t++ {
					es[t] = predFinish[t] + lag
				}
				continue
			}
			for t := 0; t < trials; t++ {
				if v := predFinish[t] + lag; v > es[t] {
					es[t] = v
				}
			}
		}

		ef := make([]float64, trials)
		dur := durations[i]
		for t := 0; t < trials; t++ {
			ef[t] = es[t] + dur[t]
		}
		earlyStart[i] = es
		earlyFinish[i] = ef
	}
	return earlyStart, earlyFinish
}

// projectDurations reduces the early-finish matrix to the per-trial total
// project duration: the maximum early-finish across all activities.
func projectDurations(earlyFinish [][]float64, trials int) []float64 {
	totals := make([]float64, trials)
	for i, row := range earlyFinish {
		if i == 0 {
			copy(totals, row)
			continue
		}
		for t := 0; t < trials; t++ {
			if row[t] > totals[t] {
				totals[t] = row[t]
			}
		}
	}
	return totals
}

// traceCriticality marks, per trial, every activity on a duration-determining
// path: activities finishing at the trial's total duration seed a backward
// walk that follows any predecessor whose finish (plus lag) meets the current
// activity's start within tolerance. Returns per-activity critical-trial
// counts.
func (e *Engine) traceCriticality(nw *network, earlyStart, earlyFinish [][]float64, totals []float64) []int {
	n := len(nw.order)
	counts := make([]int, n)
	if n == 0 {
		return counts
	}
	tol := e.cfg.Tolerance
	critical := make([]bool, n)
	stack := make([]int, 0, n)

	for t := range totals {
		for i := 0; i < n; i++ {
			critical[i] = false
		}
		stack = stack[:0]

		for i := 0; i < n; i++ {
			if math.Abs(earlyFinish[i][t]-totals[t]) <= tol {
				critical[i] = true
				stack = append(stack, i)
			}
		}

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, j := range nw.preds[i] {
				if critical[j] {
					continue
				}
				if math.Abs(earlyFinish[j][t]+nw.lag[i][j]-earlyStart[i][t]) <= tol {
					critical[j] = true
					stack = append(stack, j)
				}
			}
		}

		for i := 0; i < n; i++ {
			if critical[i] {
				counts[i]++
			}
		}
	}
	return counts
}
