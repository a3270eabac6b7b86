package montecarlo

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
	apperrors "schedrisk/internal/errors"
)

// CorrelatedSampler draws jointly correlated duration samples via a Gaussian
// copula: standard-normal draws are correlated through the Cholesky factor
// of the correlation matrix, then mapped through each activity's own
// quantile function so the marginals match the declared distributions.
//
// The linear correlation of the output approximates the requested structure;
// skewed marginals (PERT, triangular) attenuate it slightly, and sampling
// error shrinks as the trial count grows.
type CorrelatedSampler struct {
	matrix *risk.CorrelationMatrix
	lower  *mat.TriDense
}

// NewCorrelatedSampler factorizes the correlation matrix, repairing it to
// positive definiteness first when needed. The factorization is done once
// and reused across Sample calls.
func NewCorrelatedSampler(matrix *risk.CorrelationMatrix) (*CorrelatedSampler, error) {
	if matrix == nil {
		return nil, apperrors.InvalidInput("correlation matrix is required")
	}
	lower, err := matrix.CholeskyLower()
	if err != nil {
		return nil, err
	}
	return &CorrelatedSampler{matrix: matrix, lower: lower}, nil
}

// Matrix returns the correlation matrix the sampler was built from.
func (s *CorrelatedSampler) Matrix() *risk.CorrelationMatrix {
	return s.matrix
}

// Sample draws trials jointly correlated values for every activity in the
// matrix ordering. Each activity must have a distribution; the returned map
// holds one sample slice of length trials per activity.
func (s *CorrelatedSampler) Sample(distributions risk.ActivityDistributions, trials int, rng *rand.Rand) (map[core.ActivityID][]float64, error) {
	if trials <= 0 {
		return nil, apperrors.ValidationErrorf("trial count must be positive, got %d", trials)
	}
	order := s.matrix.Order()
	for _, id := range order {
		if _, ok := distributions[id]; !ok {
			return nil, apperrors.ValidationErrorf("no distribution for correlated activity %q", id)
		}
	}

	n := len(order)
	out := make(map[core.ActivityID][]float64, n)
	if n == 0 {
		return out, nil
	}

	// Independent standard normals, trials x activities, drawn in a fixed
	// order so identical seeds reproduce identical matrices.
	z := mat.NewDense(trials, n, nil)
	for t := 0; t < trials; t++ {
		for j := 0; j < n; j++ {
			z.Set(t, j, distuv.UnitNormal.Quantile(openUnit(rng)))
		}
	}

	// Correlate: C = Z * L^T preserves the requested structure since
	// L * L^T equals the (repaired) correlation matrix.
	correlated := mat.NewDense(trials, n, nil)
	correlated.Mul(z, s.lower.T())

	// Map each correlated normal through the standard normal CDF to a
	// uniform, then through the activity's own quantile function.
	for j, id := range order {
		dist := distributions[id]
		samples := make([]float64, trials)
		for t := 0; t < trials; t++ {
			u := distuv.UnitNormal.CDF(correlated.At(t, j))
			samples[t] = dist.Quantile(clampUnit(u))
		}
		out[id] = samples
	}
	return out, nil
}

// openUnit draws a uniform from the open interval (0,1); Float64 can return
// exactly 0, which maps to -Inf under the normal quantile.
func openUnit(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return u
}

// clampUnit keeps a probability strictly inside (0,1) so extreme correlated
// draws cannot push a quantile function to an infinity.
func clampUnit(u float64) float64 {
	const eps = 1e-12
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}
