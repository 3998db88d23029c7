// Package aggregator orchestrates the pipeline: cache check, parallel
// fan-out to every declared source adapter, collect, dedupe, persist,
// filter/paginate, cache write. Terminal failure is impossible by design —
// every stage degrades instead of aborting, and the public methods always
// return a well-formed response.
package aggregator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobfuse/internal/adapters"
	"jobfuse/internal/cache"
	"jobfuse/internal/dedupe"
	"jobfuse/internal/errors"
	"jobfuse/internal/events"
	"jobfuse/internal/models"
	"jobfuse/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobfuse/aggregator")

// Store is the persistence surface the orchestrator needs.
type Store interface {
	UpsertJobs(ctx context.Context, jobs []models.Job) (int, error)
	QueryJobs(ctx context.Context, filters models.JobSearchFilters) ([]models.Job, int, error)
	RecentJobs(ctx context.Context, page, limit int) ([]models.Job, int, error)
	RefreshRecent(ctx context.Context) error
	UpdateAutoApplyStatus(ctx context.Context, jobID string, status models.AutoApplyStatus, notes string) (bool, error)
	AggregatorStats(ctx context.Context) ([]models.AggregatorStat, error)
}

type Options struct {
	CacheTTL       time.Duration
	AdapterTimeout time.Duration
}

type Aggregator struct {
	// adapters in declaration order; this order fixes which duplicate
	// survives first-seen-wins deduplication.
	adapters  []adapters.SourceAdapter
	store     Store
	cache     cache.Cache
	publisher events.Publisher
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

func New(
	sourceAdapters []adapters.SourceAdapter,
	store Store,
	responseCache cache.Cache,
	publisher events.Publisher,
	logger *zap.Logger,
	opts Options,
) *Aggregator {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.AdapterTimeout == 0 {
		opts.AdapterTimeout = 15 * time.Second
	}
	return &Aggregator{
		adapters:  sourceAdapters,
		store:     store,
		cache:     responseCache,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// SearchJobs is the live aggregation entry point. The returned response is
// never nil; the worst case is empty jobs with populated aggregator results.
func (a *Aggregator) SearchJobs(ctx context.Context, filters models.JobSearchFilters) *models.JobSearchResponse {
	ctx, span := tracer.Start(ctx, "Aggregator.SearchJobs")
	defer span.End()

	filters = filters.Normalized()
	key := filters.CacheKey()

	if cached := a.cacheLookup(ctx, key); cached != nil {
		span.SetAttributes(telemetry.Bool("cache.hit", true))
		return cached
	}
	span.SetAttributes(telemetry.Bool("cache.hit", false))

	results := a.fanOut(ctx, filters)

	aggregatorResults := make(map[string]models.AggregatorResult, len(results))
	var fetched []models.Job
	for _, r := range results {
		ar := models.AggregatorResult{Count: len(r.Jobs), Success: r.Success}
		if r.Err != nil {
			ar.Error = r.Err.Error()
		}
		aggregatorResults[r.Source] = ar
		fetched = append(fetched, r.Jobs...)
	}

	deduped := dedupe.Collapse(fetched)
	span.SetAttributes(
		telemetry.Int("jobs.fetched", len(fetched)),
		telemetry.Int("jobs.deduped", len(deduped)),
	)

	persisted, err := a.store.UpsertJobs(ctx, deduped)
	if err != nil {
		// Degraded mode: the caller still gets the in-memory results,
		// they just are not durable.
		a.logger.Error("failed to persist aggregated jobs",
			zap.Int("count", len(deduped)),
			zap.Error(errors.Persistence("upserting aggregated batch", err)))
	} else if persisted > 0 {
		// Keep the recent-jobs materialization current so a browse call
		// right after an aggregation sees the rows just written.
		if err := a.store.RefreshRecent(ctx); err != nil {
			a.logger.Warn("failed to refresh recent jobs",
				zap.Error(errors.Persistence("refreshing recent jobs", err)))
		}
	}

	matched := applyFilters(deduped, filters, a.now())
	sortByPostedDate(matched)

	response := &models.JobSearchResponse{
		Jobs:              paginate(matched, filters.Page, filters.Limit),
		TotalCount:        len(matched),
		Page:              filters.Page,
		TotalPages:        models.TotalPagesFor(len(matched), filters.Limit),
		AggregatorResults: aggregatorResults,
	}

	a.cacheWrite(ctx, key, response)
	a.publishSummary(ctx, aggregatorResults, len(fetched), len(deduped), persisted)

	a.logger.Info("aggregation complete",
		zap.Int("fetched", len(fetched)),
		zap.Int("deduped", len(deduped)),
		zap.Int("persisted", persisted),
		zap.Int("matched", len(matched)))

	return response
}

// GetStoredJobs answers browse queries from the store only; no source
// adapter is touched. Store failures degrade to an empty response.
func (a *Aggregator) GetStoredJobs(ctx context.Context, filters models.JobSearchFilters) *models.JobSearchResponse {
	ctx, span := tracer.Start(ctx, "Aggregator.GetStoredJobs")
	defer span.End()

	filters = filters.Normalized()

	var (
		jobs  []models.Job
		total int
		err   error
	)
	if filters.PaginationOnly() {
		span.SetAttributes(telemetry.String("query.path", "recent"))
		jobs, total, err = a.store.RecentJobs(ctx, filters.Page, filters.Limit)
	} else {
		span.SetAttributes(telemetry.String("query.path", "filtered"))
		jobs, total, err = a.store.QueryJobs(ctx, filters)
	}
	if err != nil {
		span.RecordError(err)
		a.logger.Error("stored jobs query failed",
			zap.Error(errors.Persistence("querying stored jobs", err)))
		return models.EmptyResponse(filters)
	}

	return &models.JobSearchResponse{
		Jobs:       jobs,
		TotalCount: total,
		Page:       filters.Page,
		TotalPages: models.TotalPagesFor(total, filters.Limit),
	}
}

// UpdateAutoApplyStatus records a reviewer decision on a stored job.
func (a *Aggregator) UpdateAutoApplyStatus(ctx context.Context, jobID string, status models.AutoApplyStatus, notes string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.UpdateAutoApplyStatus")
	defer span.End()

	if !models.ValidAutoApplyStatus(status) {
		return false, errors.InvalidInput("unknown auto-apply status: "+string(status), nil)
	}

	updated, err := a.store.UpdateAutoApplyStatus(ctx, jobID, status, notes)
	if err != nil {
		span.RecordError(err)
		return false, errors.Persistence("updating auto-apply status", err)
	}
	return updated, nil
}

// GetAggregatorStats reports per-source catalog statistics.
func (a *Aggregator) GetAggregatorStats(ctx context.Context) ([]models.AggregatorStat, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.GetAggregatorStats")
	defer span.End()

	stats, err := a.store.AggregatorStats(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Persistence("querying aggregator stats", err)
	}
	return stats, nil
}

// fanOut issues one Fetch per declared adapter concurrently and collects the
// results in declaration order, waiting for all of them regardless of
// individual outcome. Each call carries its own timeout so a hung remote
// resolves as a failure instead of blocking the batch.
func (a *Aggregator) fanOut(ctx context.Context, filters models.JobSearchFilters) []adapters.FetchResult {
	ctx, span := tracer.Start(ctx, "Aggregator.fanOut")
	defer span.End()
	span.SetAttributes(telemetry.Int("adapters.count", len(a.adapters)))

	results := make([]adapters.FetchResult, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter adapters.SourceAdapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.opts.AdapterTimeout)
			defer cancel()
			results[i] = adapter.Fetch(fetchCtx, filters)
		}(i, adapter)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) cacheLookup(ctx context.Context, key string) *models.JobSearchResponse {
	var cached models.JobSearchResponse
	err := a.cache.Get(ctx, key, &cached)
	if err == nil {
		a.logger.Debug("cache hit", zap.String("key", key))
		return &cached
	}
	if err != cache.ErrNotFound {
		// Advisory cache: errors degrade to a miss.
		a.logger.Warn("cache read failed",
			zap.Error(errors.Cache("reading cached response", err)))
	}
	return nil
}

func (a *Aggregator) cacheWrite(ctx context.Context, key string, response *models.JobSearchResponse) {
	if err := a.cache.Set(ctx, key, *response, a.opts.CacheTTL); err != nil {
		a.logger.Warn("cache write failed",
			zap.Error(errors.Cache("writing cached response", err)))
	}
}

func (a *Aggregator) publishSummary(ctx context.Context, sources map[string]models.AggregatorResult, fetched, deduped, persisted int) {
	summary := events.RunSummary{
		CompletedAt:  a.now().UTC(),
		Sources:      sources,
		Fetched:      fetched,
		Deduplicated: deduped,
		Persisted:    persisted,
	}
	if err := a.publisher.PublishRunSummary(ctx, summary); err != nil {
		a.logger.Warn("failed to publish run summary", zap.Error(err))
	}
}
