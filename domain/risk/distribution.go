// Package risk holds the probabilistic model for schedule simulation:
// duration distributions, the correlation structure between activities,
// and the output types a simulation run produces.
package risk

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"schedrisk/domain/core"
	apperrors "schedrisk/internal/errors"
)

// DistributionKind tags the closed set of supported duration distributions.
type DistributionKind string

const (
	Triangular DistributionKind = "triangular"
	PERT       DistributionKind = "pert"
	Normal     DistributionKind = "normal"
	Uniform    DistributionKind = "uniform"
)

// pertLambda is the mode weight in the PERT-to-Beta reparameterization.
const pertLambda = 4.0

// betaEpsilon floors the Beta shape parameters so degenerate PERT inputs
// never produce an invalid Beta distribution.
const betaEpsilon = 1e-6

// Distribution is a tagged variant over the supported duration distributions.
// Min/Mode/Max are used by Triangular and PERT, Min/Max by Uniform, and
// Mean/StdDev by Normal. Construct through the New* functions so invalid
// parameters are rejected immediately.
type Distribution struct {
	Kind   DistributionKind `json:"kind"`
	Min    float64          `json:"min,omitempty"`
	Mode   float64          `json:"mode,omitempty"`
	Max    float64          `json:"max,omitempty"`
	Mean   float64          `json:"mean,omitempty"`
	StdDev float64          `json:"std_dev,omitempty"`
}

// NewTriangular builds a validated triangular distribution.
func NewTriangular(min, mode, max float64) (Distribution, error) {
	d := Distribution{Kind: Triangular, Min: min, Mode: mode, Max: max}
	return d, d.Validate()
}

// NewPERT builds a validated PERT distribution (mode weighted four times).
func NewPERT(min, mode, max float64) (Distribution, error) {
	d := Distribution{Kind: PERT, Min: min, Mode: mode, Max: max}
	return d, d.Validate()
}

// NewNormal builds a validated normal distribution.
func NewNormal(mean, stdDev float64) (Distribution, error) {
	d := Distribution{Kind: Normal, Mean: mean, StdDev: stdDev}
	return d, d.Validate()
}

// NewUniform builds a validated uniform distribution.
func NewUniform(min, max float64) (Distribution, error) {
	d := Distribution{Kind: Uniform, Min: min, Max: max}
	return d, d.Validate()
}

// Validate checks the parameter invariants for the tagged kind. An
// unrecognized kind is a validation failure, never a silent default.
func (d Distribution) Validate() error {
	switch d.Kind {
	case Triangular, PERT:
		if d.Min > d.Mode || d.Mode > d.Max {
			return apperrors.ValidationErrorf("%s distribution requires min <= mode <= max, got (%g, %g, %g)", d.Kind, d.Min, d.Mode, d.Max)
		}
	case Uniform:
		if d.Min > d.Max {
			return apperrors.ValidationErrorf("uniform distribution requires min <= max, got (%g, %g)", d.Min, d.Max)
		}
	case Normal:
		if d.StdDev < 0 {
			return apperrors.ValidationErrorf("normal distribution requires std >= 0, got %g", d.StdDev)
		}
	default:
		return apperrors.ValidationErrorf("unrecognized distribution kind %q", d.Kind)
	}
	return nil
}

// IsConstant reports whether the distribution degenerates to a single value.
func (d Distribution) IsConstant() bool {
	switch d.Kind {
	case Triangular, PERT, Uniform:
		return d.Min == d.Max
	case Normal:
		return d.StdDev == 0
	}
	return false
}

// Quantile maps a probability in (0,1) to a value of the distribution.
// Degenerate distributions return their constant for every probability.
// The caller must Validate first; Quantile assumes valid parameters.
func (d Distribution) Quantile(p float64) float64 {
	switch d.Kind {
	case Triangular:
		if d.Min == d.Max {
			return d.Min
		}
		return distuv.NewTriangle(d.Min, d.Max, d.Mode, nil).Quantile(p)
	case PERT:
		if d.Min == d.Max {
			return d.Min
		}
		alpha, beta := pertShape(d.Min, d.Mode, d.Max)
		b := distuv.Beta{Alpha: alpha, Beta: beta}
		return d.Min + b.Quantile(p)*(d.Max-d.Min)
	case Normal:
		if d.StdDev == 0 {
			return d.Mean
		}
		return distuv.Normal{Mu: d.Mean, Sigma: d.StdDev}.Quantile(p)
	case Uniform:
		return d.Min + p*(d.Max-d.Min)
	}
	return 0
}

// Sample draws one value from the distribution through its quantile
// function, consuming exactly the uniforms it needs from rng.
func (d Distribution) Sample(rng *rand.Rand) float64 {
	return d.Quantile(openUnit(rng))
}

// pertShape reparameterizes (min, mode, max) into Beta shape parameters
// with the classic lambda=4 mode weighting, floored at a small epsilon.
func pertShape(min, mode, max float64) (alpha, beta float64) {
	span := max - min
	alpha = 1 + pertLambda*(mode-min)/span
	beta = 1 + pertLambda*(max-mode)/span
	if alpha < betaEpsilon {
		alpha = betaEpsilon
	}
	if beta < betaEpsilon {
		beta = betaEpsilon
	}
	return alpha, beta
}

// openUnit draws a uniform from the open interval (0,1). Float64 can return
// exactly 0, which would map to -Inf under a normal quantile.
func openUnit(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return u
}

// ActivityDistributions maps activity identifiers to their duration
// distributions. Activities absent from the map use their base duration.
type ActivityDistributions map[core.ActivityID]Distribution

// Validate checks every distribution in the map.
func (m ActivityDistributions) Validate() error {
	for id, d := range m {
		if err := d.Validate(); err != nil {
			return apperrors.Wrapf(err, "distribution for activity %q", id)
		}
	}
	return nil
}
