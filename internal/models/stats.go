package models

// AggregatorStat summarizes what one source has contributed to the catalog.
type AggregatorStat struct {
	Source       string  `json:"source"`
	TotalJobs    int     `json:"totalJobs"`
	EligibleJobs int     `json:"eligibleJobs"`
	RecentJobs   int     `json:"recentJobs"`
	AvgSalaryMin float64 `json:"avgSalaryMin"`
	AvgSalaryMax float64 `json:"avgSalaryMax"`
}
