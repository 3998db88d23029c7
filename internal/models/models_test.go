package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_DeterministicForEqualFilters(t *testing.T) {
	eligible := true
	a := JobSearchFilters{
		Keywords:          "golang",
		Location:          "Berlin",
		JobTypes:          []JobType{JobTypeContract},
		SalaryMin:         50000,
		AutoApplyEligible: &eligible,
		Page:              2,
		Limit:             20,
	}
	b := a
	eligibleCopy := true
	b.AutoApplyEligible = &eligibleCopy

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestCacheKey_Format(t *testing.T) {
	key := JobSearchFilters{Keywords: "go"}.CacheKey()

	assert.True(t, strings.HasPrefix(key, "job_search:{"), "key %q", key)
	// Field order is the struct declaration order, so keywords always
	// serializes first.
	assert.True(t, strings.HasPrefix(key, `job_search:{"keywords":"go"`), "key %q", key)
}

func TestCacheKey_DiffersPerFilterValue(t *testing.T) {
	base := JobSearchFilters{Keywords: "go", Page: 1}
	other := JobSearchFilters{Keywords: "go", Page: 2}

	assert.NotEqual(t, base.CacheKey(), other.CacheKey())
}

func TestNormalized_Clamps(t *testing.T) {
	f := JobSearchFilters{Page: 0, Limit: 0}.Normalized()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = JobSearchFilters{Page: 3, Limit: 10_000}.Normalized()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)
}

func TestPaginationOnly(t *testing.T) {
	assert.True(t, JobSearchFilters{Page: 4, Limit: 50}.PaginationOnly())
	assert.True(t, JobSearchFilters{PostedWithin: PostedWithinAll}.PaginationOnly())
	assert.False(t, JobSearchFilters{Keywords: "go"}.PaginationOnly())
	assert.False(t, JobSearchFilters{JobTypes: []JobType{JobTypeContract}}.PaginationOnly())
	assert.False(t, JobSearchFilters{SalaryMin: 1}.PaginationOnly())

	no := false
	assert.False(t, JobSearchFilters{AutoApplyEligible: &no}.PaginationOnly())
}

func TestPostedAfter(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(-24*time.Hour), JobSearchFilters{PostedWithin: PostedWithin24h}.PostedAfter(now))
	assert.Equal(t, now.AddDate(0, 0, -7), JobSearchFilters{PostedWithin: PostedWithin7d}.PostedAfter(now))
	assert.Equal(t, now.AddDate(0, 0, -30), JobSearchFilters{PostedWithin: PostedWithin30d}.PostedAfter(now))
	assert.True(t, JobSearchFilters{PostedWithin: PostedWithinAll}.PostedAfter(now).IsZero())
	assert.True(t, JobSearchFilters{}.PostedAfter(now).IsZero())
}

func TestTotalPagesFor(t *testing.T) {
	assert.Equal(t, 0, TotalPagesFor(0, 20))
	assert.Equal(t, 1, TotalPagesFor(1, 20))
	assert.Equal(t, 1, TotalPagesFor(20, 20))
	assert.Equal(t, 2, TotalPagesFor(21, 20))
	assert.Equal(t, 3, TotalPagesFor(41, 20))
}

func TestDeriveID_StableAndDistinct(t *testing.T) {
	a := DeriveID("adzuna", "123")
	b := DeriveID("adzuna", "123")
	c := DeriveID("jooble", "123")

	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "same (source, externalID) always derives the same ID")
	assert.NotEqual(t, a, c)
}

func TestValidAutoApplyStatus(t *testing.T) {
	assert.True(t, ValidAutoApplyStatus(AutoApplyPending))
	assert.True(t, ValidAutoApplyStatus(AutoApplyEligible))
	assert.True(t, ValidAutoApplyStatus(AutoApplyIneligible))
	assert.False(t, ValidAutoApplyStatus("approved"))
	assert.False(t, ValidAutoApplyStatus(""))
}

func TestResponseBinaryRoundTrip(t *testing.T) {
	resp := JobSearchResponse{
		Jobs:       []Job{{ID: "x", Title: "Engineer"}},
		TotalCount: 1,
		Page:       1,
		TotalPages: 1,
		AggregatorResults: map[string]AggregatorResult{
			"adzuna": {Count: 1, Success: true},
			"jooble": {Success: false, Error: "boom"},
		},
	}

	data, err := resp.MarshalBinary()
	require.NoError(t, err)

	var decoded JobSearchResponse
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, resp, decoded)
}
