package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"jobfuse/internal/models"
	"jobfuse/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobfuse/store")

const jobColumns = `id, external_id, source, title, company, location,
	description_snippet, salary, salary_min, salary_max, salary_currency,
	job_type, work_location, posted_date, apply_url, auto_apply_status,
	auto_apply_notes, title_hash, company_location_hash, created_at, updated_at`

// auto_apply_status and auto_apply_notes are deliberately absent from the
// update list: the external reviewer owns them, and a re-aggregation must
// not reset a reviewed job back to pending.
const upsertSQL = `
	INSERT INTO jobs (
		id, external_id, source, title, company, location,
		description_snippet, salary, salary_min, salary_max, salary_currency,
		job_type, work_location, posted_date, apply_url, auto_apply_status,
		title_hash, company_location_hash
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
	)
	ON CONFLICT (external_id, source) DO UPDATE SET
		title = EXCLUDED.title,
		company = EXCLUDED.company,
		location = EXCLUDED.location,
		description_snippet = EXCLUDED.description_snippet,
		salary = EXCLUDED.salary,
		salary_min = EXCLUDED.salary_min,
		salary_max = EXCLUDED.salary_max,
		salary_currency = EXCLUDED.salary_currency,
		job_type = EXCLUDED.job_type,
		work_location = EXCLUDED.work_location,
		posted_date = EXCLUDED.posted_date,
		apply_url = EXCLUDED.apply_url,
		title_hash = EXCLUDED.title_hash,
		company_location_hash = EXCLUDED.company_location_hash,
		updated_at = now()`

// JobStore owns the durable job records.
type JobStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewJobStore(pool *pgxpool.Pool, logger *zap.Logger) *JobStore {
	return &JobStore{pool: pool, logger: logger}
}

// UpsertJobs writes a batch idempotently: one row per (external_id, source),
// created_at and the primary key untouched on conflict. An empty batch is a
// no-op.
func (s *JobStore) UpsertJobs(ctx context.Context, jobs []models.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	ctx, span := tracer.Start(ctx, "JobStore.UpsertJobs")
	defer span.End()
	span.SetAttributes(telemetry.Int("jobs.count", len(jobs)))

	batch := &pgx.Batch{}
	for _, job := range jobs {
		batch.Queue(upsertSQL,
			job.ID,
			job.ExternalID,
			job.Source,
			job.Title,
			job.Company,
			job.Location,
			job.DescriptionSnippet,
			job.Salary,
			job.SalaryMin,
			job.SalaryMax,
			job.SalaryCurrency,
			string(job.JobType),
			string(job.WorkLocation),
			job.PostedDate,
			job.ApplyURL,
			string(models.AutoApplyPending),
			job.TitleHash,
			job.CompanyLocationHash,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := results.Close(); cerr != nil {
			s.logger.Warn("failed to close batch results", zap.Error(cerr))
		}
	}()

	written := 0
	for range jobs {
		if _, err := results.Exec(); err != nil {
			span.RecordError(err)
			return written, fmt.Errorf("upsert job batch: %w", err)
		}
		written++
	}

	return written, nil
}

// QueryJobs runs the full predicate path: filter, order by posted_date
// descending, paginate, with a parallel count supplying the total.
func (s *JobStore) QueryJobs(ctx context.Context, filters models.JobSearchFilters) ([]models.Job, int, error) {
	ctx, span := tracer.Start(ctx, "JobStore.QueryJobs")
	defer span.End()

	filters = filters.Normalized()
	where, args := buildPredicate(filters, time.Now())

	countSQL := fmt.Sprintf("SELECT count(*) FROM jobs %s", where)
	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	offset := (filters.Page - 1) * filters.Limit
	pageSQL := fmt.Sprintf(
		"SELECT %s FROM jobs %s ORDER BY posted_date DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, len(args)+1, len(args)+2)
	pageArgs := append(args, filters.Limit, offset)

	jobs, err := s.queryRows(ctx, pageSQL, pageArgs...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	span.SetAttributes(
		telemetry.Int("jobs.count", len(jobs)),
		telemetry.Int("jobs.total", total),
	)
	return jobs, total, nil
}

// Both statements read recent_jobs: counting the live table instead would
// report totals (and total pages) the materialization cannot serve between
// refreshes.
const recentCountSQL = "SELECT count(*) FROM recent_jobs"

// RecentJobs serves pagination-only browsing from the precomputed
// recent_jobs materialization instead of re-scanning the predicate path.
// Output contract matches QueryJobs with empty filters.
func (s *JobStore) RecentJobs(ctx context.Context, page, limit int) ([]models.Job, int, error) {
	ctx, span := tracer.Start(ctx, "JobStore.RecentJobs")
	defer span.End()

	var total int
	if err := s.pool.QueryRow(ctx, recentCountSQL).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("count recent jobs: %w", err)
	}

	offset := (page - 1) * limit
	sql := fmt.Sprintf(
		"SELECT %s FROM recent_jobs ORDER BY posted_date DESC LIMIT $1 OFFSET $2",
		jobColumns)

	jobs, err := s.queryRows(ctx, sql, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	return jobs, total, nil
}

// UpdateAutoApplyStatus records a reviewer decision. Returns false when no
// job with that ID exists.
func (s *JobStore) UpdateAutoApplyStatus(ctx context.Context, jobID string, status models.AutoApplyStatus, notes string) (bool, error) {
	ctx, span := tracer.Start(ctx, "JobStore.UpdateAutoApplyStatus")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET auto_apply_status = $2, auto_apply_notes = $3, updated_at = now()
		WHERE id = $1`,
		jobID, string(status), notes)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("update auto apply status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AggregatorStats summarizes the catalog per source. Unknown salaries are
// stored as zero and excluded from the averages via NULLIF.
func (s *JobStore) AggregatorStats(ctx context.Context) ([]models.AggregatorStat, error) {
	ctx, span := tracer.Start(ctx, "JobStore.AggregatorStats")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT
			source,
			count(*) AS total_jobs,
			count(*) FILTER (WHERE auto_apply_status = 'eligible') AS eligible_jobs,
			count(*) FILTER (WHERE posted_date >= now() - interval '7 days') AS recent_jobs,
			COALESCE(avg(NULLIF(salary_min, 0)), 0) AS avg_salary_min,
			COALESCE(avg(NULLIF(salary_max, 0)), 0) AS avg_salary_max
		FROM jobs
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query aggregator stats: %w", err)
	}
	defer rows.Close()

	var stats []models.AggregatorStat
	for rows.Next() {
		var st models.AggregatorStat
		if err := rows.Scan(
			&st.Source, &st.TotalJobs, &st.EligibleJobs,
			&st.RecentJobs, &st.AvgSalaryMin, &st.AvgSalaryMax,
		); err != nil {
			return nil, fmt.Errorf("scan aggregator stat: %w", err)
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// PurgeOlderThan deletes rows whose posted_date fell out of the retention
// window. Returns the number of rows removed.
func (s *JobStore) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	ctx, span := tracer.Start(ctx, "JobStore.PurgeOlderThan")
	defer span.End()

	cutoff := time.Now().Add(-retention)
	tag, err := s.pool.Exec(ctx, "DELETE FROM jobs WHERE posted_date < $1", cutoff)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("purge jobs: %w", err)
	}

	span.SetAttributes(telemetry.Int("jobs.purged", int(tag.RowsAffected())))
	return tag.RowsAffected(), nil
}

// RefreshRecent rebuilds the recent_jobs materialization.
func (s *JobStore) RefreshRecent(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "JobStore.RefreshRecent")
	defer span.End()

	if _, err := s.pool.Exec(ctx, "REFRESH MATERIALIZED VIEW recent_jobs"); err != nil {
		span.RecordError(err)
		return fmt.Errorf("refresh recent_jobs: %w", err)
	}
	return nil
}

func (s *JobStore) queryRows(ctx context.Context, sql string, args ...any) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var j models.Job
		var jobType, workLocation, autoApply string
		if err := rows.Scan(
			&j.ID, &j.ExternalID, &j.Source, &j.Title, &j.Company, &j.Location,
			&j.DescriptionSnippet, &j.Salary, &j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency,
			&jobType, &workLocation, &j.PostedDate, &j.ApplyURL, &autoApply,
			&j.AutoApplyNotes, &j.TitleHash, &j.CompanyLocationHash, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.JobType = models.JobType(jobType)
		j.WorkLocation = models.WorkLocation(workLocation)
		j.AutoApplyStatus = models.AutoApplyStatus(autoApply)
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}
