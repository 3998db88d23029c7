package store

import (
	"fmt"
	"strings"
	"time"

	"jobfuse/internal/models"
)

// buildPredicate turns the request filters into a WHERE clause and its
// positional args, growing one condition at a time. An empty filter set
// yields an empty clause.
func buildPredicate(filters models.JobSearchFilters, now time.Time) (string, []any) {
	var conds []string
	var args []any

	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Keywords != "" {
		p := next("%" + filters.Keywords + "%")
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %s OR company ILIKE %s OR description_snippet ILIKE %s)", p, p, p))
	}

	if filters.Location != "" {
		conds = append(conds, fmt.Sprintf("location ILIKE %s", next("%"+filters.Location+"%")))
	}

	if filters.Company != "" {
		conds = append(conds, fmt.Sprintf("company ILIKE %s", next("%"+filters.Company+"%")))
	}

	if len(filters.JobTypes) > 0 {
		values := make([]string, len(filters.JobTypes))
		for i, jt := range filters.JobTypes {
			values[i] = string(jt)
		}
		conds = append(conds, fmt.Sprintf("job_type = ANY(%s)", next(values)))
	}

	if len(filters.WorkLocations) > 0 {
		values := make([]string, len(filters.WorkLocations))
		for i, wl := range filters.WorkLocations {
			values[i] = string(wl)
		}
		conds = append(conds, fmt.Sprintf("work_location = ANY(%s)", next(values)))
	}

	if filters.SalaryMin > 0 {
		conds = append(conds, fmt.Sprintf("salary_min >= %s", next(filters.SalaryMin)))
	}

	if filters.SalaryMax > 0 {
		conds = append(conds, fmt.Sprintf("(salary_max > 0 AND salary_max <= %s)", next(filters.SalaryMax)))
	}

	if floor := filters.PostedAfter(now); !floor.IsZero() {
		conds = append(conds, fmt.Sprintf("posted_date >= %s", next(floor)))
	}

	if filters.AutoApplyEligible != nil {
		status := models.AutoApplyEligible
		if !*filters.AutoApplyEligible {
			status = models.AutoApplyIneligible
		}
		conds = append(conds, fmt.Sprintf("auto_apply_status = %s", next(string(status))))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
