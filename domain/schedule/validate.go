package schedule

import (
	"schedrisk/domain/core"
	apperrors "schedrisk/internal/errors"
)

// ValidateNetwork checks the activity set and dependency set for structural
// problems that make simulation meaningless: duplicate or empty activity
// identifiers, negative base durations, dependencies naming unknown
// activities, and unrecognized dependency kinds.
//
// A dependency cycle is not detected here; topological ordering reports it.
func ValidateNetwork(activities []Activity, dependencies []Dependency) error {
	seen := make(map[core.ActivityID]bool, len(activities))
	for _, a := range activities {
		if a.ID == "" {
			return apperrors.ValidationError("activity with empty identifier")
		}
		if seen[a.ID] {
			return apperrors.ValidationErrorf("duplicate activity identifier %q", a.ID)
		}
		if a.Duration < 0 {
			return apperrors.ValidationErrorf("activity %q has negative duration %d", a.ID, a.Duration)
		}
		seen[a.ID] = true
	}

	for _, d := range dependencies {
		if !d.Kind.IsValid() {
			return apperrors.ValidationErrorf("dependency %q -> %q has unrecognized kind %q", d.Predecessor, d.Successor, d.Kind)
		}
		if !seen[d.Predecessor] {
			return apperrors.ValidationErrorf("dependency references unknown predecessor %q", d.Predecessor)
		}
		if !seen[d.Successor] {
			return apperrors.ValidationErrorf("dependency references unknown successor %q", d.Successor)
		}
		if d.Predecessor == d.Successor {
			return apperrors.ValidationErrorf("activity %q depends on itself", d.Predecessor)
		}
	}
	return nil
}

// CountNonFinishToStart returns how many dependencies use a relationship kind
// other than Finish-to-Start. Those edges are accepted by the model but
// excluded from the vectorized forward pass.
func CountNonFinishToStart(dependencies []Dependency) int {
	count := 0
	for _, d := range dependencies {
		if d.Kind != FinishToStart {
			count++
		}
	}
	return count
}
