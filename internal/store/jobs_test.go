package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL_ConflictUpdateColumnList(t *testing.T) {
	idx := strings.Index(upsertSQL, "DO UPDATE SET")
	require.Positive(t, idx, "upsert must resolve conflicts by updating")
	updateList := upsertSQL[idx:]

	// A re-aggregation refreshes every normalized field.
	for _, col := range []string{
		"title", "company", "location", "description_snippet",
		"salary", "salary_min", "salary_max", "salary_currency",
		"job_type", "work_location", "posted_date", "apply_url",
		"title_hash", "company_location_hash", "updated_at",
	} {
		assert.Contains(t, updateList, col+" = ", "column %s must be refreshed on conflict", col)
	}

	// ...but never touches the identity columns or the reviewer-owned
	// auto-apply fields: a repeated ingest must not reassign a job's ID,
	// rewind created_at, or reset a review decision back to pending.
	for _, col := range []string{"id", "external_id", "source", "created_at", "auto_apply_status", "auto_apply_notes"} {
		assert.NotContains(t, updateList, col+" = EXCLUDED", "column %s must survive a conflict update", col)
	}
	assert.NotContains(t, updateList, "created_at =")
	assert.NotContains(t, updateList, "auto_apply_status =")
	assert.NotContains(t, updateList, "auto_apply_notes =")
}

func TestUpsertSQL_ConflictTarget(t *testing.T) {
	assert.Contains(t, upsertSQL, "ON CONFLICT (external_id, source)",
		"(external_id, source) is the natural key for cross-batch idempotence")
}

func TestRecentJobs_CountAndPageReadSameRelation(t *testing.T) {
	// Counting the live jobs table here would promise totals (and pages)
	// the materialization cannot serve between refreshes.
	assert.Equal(t, "SELECT count(*) FROM recent_jobs", recentCountSQL)
}

func TestRecentJobsView_Uncapped(t *testing.T) {
	var view Migration
	for _, m := range Migrations {
		if strings.Contains(m.Up, "recent_jobs") {
			view = m
			break
		}
	}
	require.NotZero(t, view.Version, "recent_jobs materialization missing from schema history")

	assert.NotContains(t, view.Up, "LIMIT",
		"a capped view would serve fewer pages than its own count reports")
	assert.Contains(t, view.Up, "ORDER BY posted_date DESC")
}
