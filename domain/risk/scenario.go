package risk

import (
	"schedrisk/domain/core"
	"schedrisk/domain/schedule"
	apperrors "schedrisk/internal/errors"
)

// CorrelationMode selects how a scenario's correlation matrix is built.
type CorrelationMode string

const (
	// CorrelationNone samples every activity independently.
	CorrelationNone CorrelationMode = "none"
	// CorrelationExplicit applies caller-supplied pairwise entries.
	CorrelationExplicit CorrelationMode = "explicit"
	// CorrelationWBS derives correlation from work-breakdown proximity.
	CorrelationWBS CorrelationMode = "wbs"
	// CorrelationResource derives correlation from resource sharing.
	CorrelationResource CorrelationMode = "resource"
)

// CorrelationSpec configures correlation-matrix construction for a scenario.
// Only the fields relevant to the selected mode are consulted.
type CorrelationSpec struct {
	Mode                      CorrelationMode    `json:"mode"`
	Entries                   []CorrelationEntry `json:"entries,omitempty"`
	DefaultCorrelation        float64            `json:"default_correlation,omitempty"`
	SameWBSCorrelation        float64            `json:"same_wbs_correlation,omitempty"`
	SiblingWBSCorrelation     float64            `json:"sibling_wbs_correlation,omitempty"`
	SharedResourceCorrelation float64            `json:"shared_resource_correlation,omitempty"`
}

// Validate checks the mode tag and every explicit entry's coefficient range.
func (s CorrelationSpec) Validate() error {
	switch s.Mode {
	case "", CorrelationNone, CorrelationExplicit, CorrelationWBS, CorrelationResource:
	default:
		return apperrors.ValidationErrorf("unrecognized correlation mode %q", s.Mode)
	}
	for _, e := range s.Entries {
		if e.Coefficient < -1 || e.Coefficient > 1 {
			return apperrors.ValidationErrorf("correlation %q~%q coefficient %g outside [-1, 1]", e.ActivityA, e.ActivityB, e.Coefficient)
		}
	}
	return nil
}

// Scenario bundles everything one simulation run consumes: the precedence
// network, per-activity distributions, the correlation configuration, and
// the run parameters.
type Scenario struct {
	Name          string                `json:"name"`
	Activities    []schedule.Activity   `json:"activities"`
	Dependencies  []schedule.Dependency `json:"dependencies"`
	Distributions ActivityDistributions `json:"distributions,omitempty"`
	Correlation   CorrelationSpec       `json:"correlation"`
	Trials        int                   `json:"trials"`
	Seed          int64                 `json:"seed,omitempty"`
}

// Validate runs every structural check that must pass before sampling:
// network shape, distribution parameters, and correlation configuration.
func (s *Scenario) Validate() error {
	if err := schedule.ValidateNetwork(s.Activities, s.Dependencies); err != nil {
		return err
	}
	if err := s.Distributions.Validate(); err != nil {
		return err
	}
	return s.Correlation.Validate()
}

// CorrelationMatrix builds the matrix the configured mode selects, restricted to
// activities that actually carry a distribution (only uncertain durations
// can be correlated). Returns nil for CorrelationNone.
func (s *Scenario) CorrelationMatrix() *CorrelationMatrix {
	switch s.Correlation.Mode {
	case CorrelationExplicit:
		return FromEntries(s.uncertainOrder(), s.Correlation.Entries, s.Correlation.DefaultCorrelation)
	case CorrelationWBS:
		return FromWBS(s.uncertainActivities(), s.Correlation.SameWBSCorrelation, s.Correlation.SiblingWBSCorrelation)
	case CorrelationResource:
		return FromResources(s.uncertainActivities(), s.Correlation.SharedResourceCorrelation)
	}
	return nil
}

func (s *Scenario) uncertainActivities() []schedule.Activity {
	out := make([]schedule.Activity, 0, len(s.Activities))
	for _, a := range s.Activities {
		if _, ok := s.Distributions[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (s *Scenario) uncertainOrder() []core.ActivityID {
	activities := s.uncertainActivities()
	order := make([]core.ActivityID, len(activities))
	for i, a := range activities {
		order[i] = a.ID
	}
	return order
}
