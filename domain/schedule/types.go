// Package schedule holds the immutable input model for schedule-risk
// simulation: activities, precedence dependencies, and the WBS/resource
// metadata that correlation factories consume. The engine references this
// data and never mutates it.
package schedule

import (
	"schedrisk/domain/core"
)

// DependencyKind is the precedence relationship between two activities.
type DependencyKind string

const (
	FinishToStart  DependencyKind = "FS"
	StartToStart   DependencyKind = "SS"
	FinishToFinish DependencyKind = "FF"
	StartToFinish  DependencyKind = "SF"
)

// IsValid reports whether the kind is one of the four supported relationships.
func (k DependencyKind) IsValid() bool {
	switch k {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Activity is a single unit of work in the precedence network.
type Activity struct {
	ID core.ActivityID `json:"id"`
	// Name is a human-readable label carried through to reports.
	Name string `json:"name"`
	// Duration is the deterministic base duration in whole time units.
	// It is broadcast to every trial when no distribution is supplied.
	Duration int `json:"duration"`
	// WBSPath is the dot-delimited work-breakdown position, e.g. "1.2.3".
	// Empty when the activity has no WBS membership.
	WBSPath string `json:"wbs_path,omitempty"`
	// Resources lists the resources the activity consumes.
	Resources []core.ResourceID `json:"resources,omitempty"`
}

// WBSParent returns the dot-delimited parent path: "1.2.3" -> "1.2", "1" -> "".
// Returns "" and false when the activity has no WBS membership.
func (a Activity) WBSParent() (string, bool) {
	return WBSParent(a.WBSPath)
}

// WBSParent computes the parent of a dot-delimited WBS path by dropping the
// last segment. The empty path has no parent.
func WBSParent(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i], true
		}
	}
	return "", true
}

// Dependency is a directed precedence edge between two activities.
// Lag is signed: positive delays the successor, negative overlaps it.
type Dependency struct {
	Predecessor core.ActivityID `json:"predecessor"`
	Successor   core.ActivityID `json:"successor"`
	Kind        DependencyKind  `json:"kind"`
	Lag         float64         `json:"lag"`
}
