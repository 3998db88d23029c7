package models

import (
	"encoding/json"
	"time"
)

// PostedWithin windows accepted by JobSearchFilters.
const (
	PostedWithin24h = "24h"
	PostedWithin7d  = "7d"
	PostedWithin30d = "30d"
	PostedWithinAll = "all"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// JobSearchFilters is immutable per request. Its serialized form is the cache
// key, so the JSON field order here is load-bearing: two requests with the
// same filter values always produce the same key.
type JobSearchFilters struct {
	Keywords          string         `json:"keywords"`
	Location          string         `json:"location"`
	JobTypes          []JobType      `json:"jobTypes"`
	WorkLocations     []WorkLocation `json:"workLocations"`
	SalaryMin         float64        `json:"salaryMin"`
	SalaryMax         float64        `json:"salaryMax"`
	Company           string         `json:"company"`
	PostedWithin      string         `json:"postedWithin"`
	AutoApplyEligible *bool          `json:"autoApplyEligible"`
	Page              int            `json:"page"`
	Limit             int            `json:"limit"`
	Radius            int            `json:"radius"`
}

const cacheKeyPrefix = "job_search:"

// CacheKey returns the deterministic cache key for these filters.
func (f JobSearchFilters) CacheKey() string {
	// encoding/json emits struct fields in declaration order, which fixes
	// the key layout independent of how the caller populated the struct.
	data, err := json.Marshal(f)
	if err != nil {
		return cacheKeyPrefix + "invalid"
	}
	return cacheKeyPrefix + string(data)
}

// Normalized returns a copy with page/limit clamped to sane bounds.
func (f JobSearchFilters) Normalized() JobSearchFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// PaginationOnly reports whether no filter is set beyond page/limit, which is
// the precondition for the precomputed recent-jobs fast path.
func (f JobSearchFilters) PaginationOnly() bool {
	return f.Keywords == "" &&
		f.Location == "" &&
		len(f.JobTypes) == 0 &&
		len(f.WorkLocations) == 0 &&
		f.SalaryMin == 0 &&
		f.SalaryMax == 0 &&
		f.Company == "" &&
		(f.PostedWithin == "" || f.PostedWithin == PostedWithinAll) &&
		f.AutoApplyEligible == nil
}

// PostedAfter resolves the PostedWithin window into a date floor relative to
// now. The zero time means no floor.
func (f JobSearchFilters) PostedAfter(now time.Time) time.Time {
	switch f.PostedWithin {
	case PostedWithin24h:
		return now.Add(-24 * time.Hour)
	case PostedWithin7d:
		return now.AddDate(0, 0, -7)
	case PostedWithin30d:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}
