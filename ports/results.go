package ports

import (
	"context"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
)

// ResultStore persists simulation run summaries for later retrieval by
// reporting collaborators. Activity and dependency inputs are never
// persisted here; only derived summary fields are.
type ResultStore interface {
	SaveRunSummary(ctx context.Context, summary risk.RunSummary) error
	GetRunSummary(ctx context.Context, runID core.RunID) (*risk.RunSummary, error)
	ListRunSummaries(ctx context.Context, scenario string, limit int) ([]risk.RunSummary, error)
}
