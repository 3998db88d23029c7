package aggregator

import (
	"sort"
	"strings"
	"time"

	"jobfuse/internal/models"
)

// The in-memory half of the query engine: applied to the freshly aggregated
// set inside SearchJobs. Browsing queries go through the store's SQL
// predicate instead; both halves share the same output contract.

func applyFilters(jobs []models.Job, filters models.JobSearchFilters, now time.Time) []models.Job {
	floor := filters.PostedAfter(now)

	matched := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if matchesFilters(job, filters, floor) {
			matched = append(matched, job)
		}
	}
	return matched
}

func matchesFilters(job models.Job, filters models.JobSearchFilters, postedFloor time.Time) bool {
	if filters.Keywords != "" {
		kw := strings.ToLower(filters.Keywords)
		haystack := strings.ToLower(job.Title + "\x00" + job.Company + "\x00" + job.DescriptionSnippet)
		if !strings.Contains(haystack, kw) {
			return false
		}
	}

	if filters.Location != "" && !containsFold(job.Location, filters.Location) {
		return false
	}

	if filters.Company != "" && !containsFold(job.Company, filters.Company) {
		return false
	}

	if len(filters.JobTypes) > 0 && !containsJobType(filters.JobTypes, job.JobType) {
		return false
	}

	if len(filters.WorkLocations) > 0 && !containsWorkLocation(filters.WorkLocations, job.WorkLocation) {
		return false
	}

	if filters.SalaryMin > 0 && job.SalaryMin < filters.SalaryMin {
		return false
	}

	if filters.SalaryMax > 0 && (job.SalaryMax == 0 || job.SalaryMax > filters.SalaryMax) {
		return false
	}

	if !postedFloor.IsZero() && job.PostedDate.Before(postedFloor) {
		return false
	}

	if filters.AutoApplyEligible != nil {
		want := models.AutoApplyEligible
		if !*filters.AutoApplyEligible {
			want = models.AutoApplyIneligible
		}
		if job.AutoApplyStatus != want {
			return false
		}
	}

	return true
}

// sortByPostedDate orders newest first. The sort is stable so jobs sharing a
// posted date keep their adapter-declaration order, which keeps pagination
// slices disjoint and contiguous across calls.
func sortByPostedDate(jobs []models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].PostedDate.After(jobs[j].PostedDate)
	})
}

func paginate(jobs []models.Job, page, limit int) []models.Job {
	start := (page - 1) * limit
	if start >= len(jobs) {
		return []models.Job{}
	}
	end := start + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsJobType(set []models.JobType, v models.JobType) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}

func containsWorkLocation(set []models.WorkLocation, v models.WorkLocation) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}
