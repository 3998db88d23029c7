package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// Migrations is the ordered schema history for the jobs catalog.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "Create jobs table",
		Up: `
			CREATE TABLE IF NOT EXISTS jobs (
				id UUID PRIMARY KEY,
				external_id TEXT NOT NULL,
				source TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				company TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				description_snippet TEXT NOT NULL DEFAULT '',
				salary TEXT NOT NULL DEFAULT '',
				salary_min DOUBLE PRECISION NOT NULL DEFAULT 0,
				salary_max DOUBLE PRECISION NOT NULL DEFAULT 0,
				salary_currency TEXT NOT NULL DEFAULT '',
				job_type TEXT NOT NULL DEFAULT '',
				work_location TEXT NOT NULL DEFAULT '',
				posted_date TIMESTAMPTZ NOT NULL,
				apply_url TEXT NOT NULL DEFAULT '',
				auto_apply_status TEXT NOT NULL DEFAULT 'pending_review',
				auto_apply_notes TEXT NOT NULL DEFAULT '',
				title_hash TEXT NOT NULL DEFAULT '',
				company_location_hash TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				CONSTRAINT jobs_external_id_source_key UNIQUE (external_id, source)
			)
		`,
		Down: `DROP TABLE IF EXISTS jobs`,
	},
	{
		Version:     2,
		Description: "Index posted_date for retention and ordering",
		Up:          `CREATE INDEX IF NOT EXISTS jobs_posted_date_idx ON jobs (posted_date DESC)`,
		Down:        `DROP INDEX IF EXISTS jobs_posted_date_idx`,
	},
	{
		Version:     3,
		Description: "Materialize the recent-jobs fast path",
		Up: `
			CREATE MATERIALIZED VIEW IF NOT EXISTS recent_jobs AS
			SELECT * FROM jobs
			ORDER BY posted_date DESC
		`,
		Down: `DROP MATERIALIZED VIEW IF EXISTS recent_jobs`,
	},
}

// Migrator applies the schema history at startup, recording applied versions
// in a migrations table.
type Migrator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	return &Migrator{
		pool:   pool,
		logger: logger,
	}
}

func (m *Migrator) CreateMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := m.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.pool.Query(ctx, "SELECT version, applied_at FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

func (m *Migrator) ApplyMigration(ctx context.Context, migration Migration) error {
	if _, err := m.pool.Exec(ctx, migration.Up); err != nil {
		return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
	}

	if _, err := m.pool.Exec(ctx, `
		INSERT INTO migrations (version, description) VALUES ($1, $2)
	`, migration.Version, migration.Description); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	return nil
}

// EnsureSchema applies every pending migration in version order.
func (m *Migrator) EnsureSchema(ctx context.Context) error {
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, migration := range Migrations {
		if _, done := applied[migration.Version]; done {
			continue
		}
		m.logger.Info("applying migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
