// Package postgres persists simulation run summaries. Only derived summary
// fields are stored; activities, dependencies, and baselines are owned by
// external collaborators and never written here.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
)

const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	run_id      TEXT PRIMARY KEY,
	scenario    TEXT NOT NULL,
	trials      INTEGER NOT NULL,
	seed        BIGINT NOT NULL,
	elapsed_ms  BIGINT NOT NULL,
	p10         DOUBLE PRECISION NOT NULL,
	p50         DOUBLE PRECISION NOT NULL,
	p80         DOUBLE PRECISION NOT NULL,
	p90         DOUBLE PRECISION NOT NULL,
	mean        DOUBLE PRECISION NOT NULL,
	std_dev     DOUBLE PRECISION NOT NULL,
	min         DOUBLE PRECISION NOT NULL,
	max         DOUBLE PRECISION NOT NULL,
	criticality JSONB NOT NULL,
	sensitivity JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_simulation_runs_scenario ON simulation_runs (scenario, created_at DESC);
`

// ResultRepository stores run summaries in PostgreSQL.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Connect opens a database handle and verifies connectivity.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the simulation_runs table when missing.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure simulation_runs schema: %w", err)
	}
	return nil
}

// SaveRunSummary inserts one run summary.
func (r *ResultRepository) SaveRunSummary(ctx context.Context, summary risk.RunSummary) error {
	query := `
		INSERT INTO simulation_runs (
			run_id, scenario, trials, seed, elapsed_ms,
			p10, p50, p80, p90, mean, std_dev, min, max,
			criticality, sensitivity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	criticalityJSON, err := json.Marshal(summary.Criticality)
	if err != nil {
		return fmt.Errorf("failed to marshal criticality map: %w", err)
	}
	sensitivityJSON, err := json.Marshal(summary.Sensitivity)
	if err != nil {
		return fmt.Errorf("failed to marshal sensitivity map: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		summary.RunID.String(),
		summary.Scenario,
		summary.Trials,
		summary.Seed,
		summary.ElapsedMs,
		summary.Duration.P10,
		summary.Duration.P50,
		summary.Duration.P80,
		summary.Duration.P90,
		summary.Duration.Mean,
		summary.Duration.StdDev,
		summary.Duration.Min,
		summary.Duration.Max,
		criticalityJSON,
		sensitivityJSON,
		summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// GetRunSummary fetches one run summary by run ID.
func (r *ResultRepository) GetRunSummary(ctx context.Context, runID core.RunID) (*risk.RunSummary, error) {
	query := `
		SELECT run_id, scenario, trials, seed, elapsed_ms,
			   p10, p50, p80, p90, mean, std_dev, min, max,
			   criticality, sensitivity, created_at
		FROM simulation_runs
		WHERE run_id = $1`

	summary, err := r.scanSummary(r.db.QueryRowxContext(ctx, query, runID.String()))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run summary %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run summary: %w", err)
	}
	return summary, nil
}

// ListRunSummaries returns the most recent summaries for a scenario, newest
// first. An empty scenario lists across all scenarios.
func (r *ResultRepository) ListRunSummaries(ctx context.Context, scenario string, limit int) ([]risk.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT run_id, scenario, trials, seed, elapsed_ms,
			   p10, p50, p80, p90, mean, std_dev, min, max,
			   criticality, sensitivity, created_at
		FROM simulation_runs
		WHERE ($1 = '' OR scenario = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []risk.RunSummary
	for rows.Next() {
		summary, err := r.scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ResultRepository) scanSummary(row rowScanner) (*risk.RunSummary, error) {
	var summary risk.RunSummary
	var runID string
	var criticalityJSON, sensitivityJSON []byte

	err := row.Scan(
		&runID,
		&summary.Scenario,
		&summary.Trials,
		&summary.Seed,
		&summary.ElapsedMs,
		&summary.Duration.P10,
		&summary.Duration.P50,
		&summary.Duration.P80,
		&summary.Duration.P90,
		&summary.Duration.Mean,
		&summary.Duration.StdDev,
		&summary.Duration.Min,
		&summary.Duration.Max,
		&criticalityJSON,
		&sensitivityJSON,
		&summary.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	summary.RunID = core.RunID(runID)
	if err := json.Unmarshal(criticalityJSON, &summary.Criticality); err != nil {
		return nil, fmt.Errorf("failed to unmarshal criticality map: %w", err)
	}
	if err := json.Unmarshal(sensitivityJSON, &summary.Sensitivity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sensitivity map: %w", err)
	}
	return &summary, nil
}
