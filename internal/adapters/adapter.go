// Package adapters integrates external job-search APIs. One SourceAdapter
// per aggregator maps that API's wire format onto the canonical Job shape.
//
// Adding a source means adding an implementation of SourceAdapter and
// declaring it in the orchestrator's adapter list; nothing switches on a
// source-name string.
package adapters

import (
	"context"

	"jobfuse/internal/models"
)

// FetchResult is the only way an adapter reports back. Fetch never panics
// and has no error return: transport and parse failures come back tagged in
// Err with Success=false, so one bad source cannot abort a batch.
type FetchResult struct {
	Source  string
	Success bool
	Jobs    []models.Job
	Err     error
}

// SourceAdapter talks to one external job-search API.
type SourceAdapter interface {
	// Source is the stable name used as the Job.Source value and as the
	// key in aggregator results.
	Source() string

	// Fetch builds the source-specific request from the filters (applying
	// sane defaults for absent fields), calls the remote endpoint, and maps
	// the payload into canonical jobs. Disabled or unconfigured adapters
	// return an immediate non-success result without a network call.
	Fetch(ctx context.Context, filters models.JobSearchFilters) FetchResult
}

func failure(source string, err error) FetchResult {
	return FetchResult{Source: source, Success: false, Err: err}
}

func success(source string, jobs []models.Job) FetchResult {
	return FetchResult{Source: source, Success: true, Jobs: jobs}
}
