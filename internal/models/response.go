package models

import "encoding/json"

// AggregatorResult records what one source contributed to an aggregation run.
// Error is a plain string so the whole response stays serializable.
type AggregatorResult struct {
	Count   int    `json:"count"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JobSearchResponse is ephemeral: rebuilt per request and cached whole.
// Callers distinguish "zero matches" from "a source was down" by inspecting
// AggregatorResults, which enumerates every attempted source.
type JobSearchResponse struct {
	Jobs              []Job                       `json:"jobs"`
	TotalCount        int                         `json:"totalCount"`
	Page              int                         `json:"page"`
	TotalPages        int                         `json:"totalPages"`
	AggregatorResults map[string]AggregatorResult `json:"aggregatorResults,omitempty"`
}

// EmptyResponse is the worst-case well-formed response for a request.
func EmptyResponse(filters JobSearchFilters) *JobSearchResponse {
	return &JobSearchResponse{
		Jobs:       []Job{},
		TotalCount: 0,
		Page:       filters.Page,
		TotalPages: 0,
	}
}

// TotalPagesFor computes ceil(totalCount/limit).
func TotalPagesFor(totalCount, limit int) int {
	if limit < 1 || totalCount < 1 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}

func (r JobSearchResponse) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *JobSearchResponse) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}
