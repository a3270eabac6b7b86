package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// ActivityID identifies a schedule activity. Opaque to the engine; owned by the caller.
	ActivityID ID
	// RunID identifies one simulation run.
	RunID ID
	// ResourceID identifies a resource assigned to activities.
	ResourceID ID
)

// String conversions for domain IDs
func (id ActivityID) String() string { return ID(id).String() }
func (id RunID) String() string      { return ID(id).String() }
func (id ResourceID) String() string { return ID(id).String() }

// NewRunID creates a fresh run identifier.
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseActivityID parses a string into ActivityID
func ParseActivityID(s string) (ActivityID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("activity ID cannot be empty")
	}
	return ActivityID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}
