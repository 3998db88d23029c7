package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfuse/internal/models"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestBuildPredicate_Empty(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{Page: 1, Limit: 20}, testNow)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildPredicate_Keywords(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{Keywords: "golang"}, testNow)

	assert.Equal(t, "WHERE (title ILIKE $1 OR company ILIKE $1 OR description_snippet ILIKE $1)", where)
	require.Len(t, args, 1)
	assert.Equal(t, "%golang%", args[0])
}

func TestBuildPredicate_SetMembership(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{
		JobTypes:      []models.JobType{models.JobTypeContract, models.JobTypeFreelance},
		WorkLocations: []models.WorkLocation{models.WorkLocationRemote},
	}, testNow)

	assert.Equal(t, "WHERE job_type = ANY($1) AND work_location = ANY($2)", where)
	require.Len(t, args, 2)
	assert.Equal(t, []string{"contract", "freelance"}, args[0])
	assert.Equal(t, []string{"remote"}, args[1])
}

func TestBuildPredicate_SalaryBounds(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{
		SalaryMin: 50000,
		SalaryMax: 90000,
	}, testNow)

	assert.Equal(t, "WHERE salary_min >= $1 AND (salary_max > 0 AND salary_max <= $2)", where)
	assert.Equal(t, []any{50000.0, 90000.0}, args)
}

func TestBuildPredicate_PostedWithin(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{PostedWithin: models.PostedWithin7d}, testNow)

	assert.Equal(t, "WHERE posted_date >= $1", where)
	require.Len(t, args, 1)
	assert.Equal(t, testNow.AddDate(0, 0, -7), args[0])
}

func TestBuildPredicate_PostedWithinAll_NoFloor(t *testing.T) {
	where, _ := buildPredicate(models.JobSearchFilters{PostedWithin: models.PostedWithinAll}, testNow)
	assert.Empty(t, where)
}

func TestBuildPredicate_AutoApply(t *testing.T) {
	yes := true
	where, args := buildPredicate(models.JobSearchFilters{AutoApplyEligible: &yes}, testNow)
	assert.Equal(t, "WHERE auto_apply_status = $1", where)
	assert.Equal(t, []any{"eligible"}, args)

	no := false
	_, args = buildPredicate(models.JobSearchFilters{AutoApplyEligible: &no}, testNow)
	assert.Equal(t, []any{"ineligible"}, args)
}

func TestBuildPredicate_Combined_PlaceholdersStaySequential(t *testing.T) {
	where, args := buildPredicate(models.JobSearchFilters{
		Keywords:     "go",
		Location:     "berlin",
		Company:      "acme",
		JobTypes:     []models.JobType{models.JobTypeFullTime},
		SalaryMin:    40000,
		PostedWithin: models.PostedWithin30d,
	}, testNow)

	assert.Equal(t,
		"WHERE (title ILIKE $1 OR company ILIKE $1 OR description_snippet ILIKE $1)"+
			" AND location ILIKE $2"+
			" AND company ILIKE $3"+
			" AND job_type = ANY($4)"+
			" AND salary_min >= $5"+
			" AND posted_date >= $6",
		where)
	assert.Len(t, args, 6)
}
