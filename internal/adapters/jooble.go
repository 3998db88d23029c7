package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"jobfuse/internal/config"
	"jobfuse/internal/dedupe"
	"jobfuse/internal/errors"
	"jobfuse/internal/models"
	"jobfuse/internal/normalize"
	"jobfuse/internal/telemetry"
)

// JoobleAdapter fetches postings from the Jooble API
// (POST {base}/{key} with the search terms as a JSON body).
type JoobleAdapter struct {
	cfg    config.AggregatorConfig
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewJoobleAdapter(cfg config.AggregatorConfig, timeout time.Duration, logger *zap.Logger) *JoobleAdapter {
	return &JoobleAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

func (j *JoobleAdapter) Source() string { return j.cfg.Name }

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Radius   string `json:"radius,omitempty"`
	Page     string `json:"page"`
}

type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

type joobleJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Source   string      `json:"source"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Company  string      `json:"company"`
	Updated  string      `json:"updated"`
}

func (j *JoobleAdapter) Fetch(ctx context.Context, filters models.JobSearchFilters) FetchResult {
	ctx, span := tracer.Start(ctx, "JoobleAdapter.Fetch")
	defer span.End()

	if !j.cfg.Enabled {
		return failure(j.Source(), errors.ConfigMissing("jooble adapter disabled", nil))
	}
	if j.cfg.AppKey == "" {
		return failure(j.Source(), errors.ConfigMissing("JOOBLE_API_KEY not set", nil))
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	body := joobleRequest{
		Keywords: filters.Keywords,
		Location: filters.Location,
		Page:     strconv.Itoa(page),
	}
	if filters.Radius > 0 {
		body.Radius = strconv.Itoa(filters.Radius)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return failure(j.Source(), errors.SourceUnavailable("encoding request", err))
	}

	reqURL := fmt.Sprintf("%s/%s", j.cfg.BaseURL, j.cfg.AppKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(encoded))
	if err != nil {
		return failure(j.Source(), errors.SourceUnavailable("creating request", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		span.RecordError(err)
		j.logger.Warn("jooble request failed", zap.Error(err))
		return failure(j.Source(), errors.SourceUnavailable("executing request", err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			j.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("jooble returned %d: %s", resp.StatusCode, string(raw))
		span.RecordError(err)
		return failure(j.Source(), errors.SourceUnavailable("unexpected status", err))
	}

	var payload joobleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return failure(j.Source(), errors.SourceUnavailable("decoding response", err))
	}

	jobs := make([]models.Job, 0, len(payload.Jobs))
	for _, item := range payload.Jobs {
		jobs = append(jobs, j.mapJob(item))
	}

	span.SetAttributes(telemetry.Int("jobs.count", len(jobs)))
	j.logger.Debug("jooble fetch complete",
		zap.Int("count", len(jobs)),
		zap.Int("total_count", payload.TotalCount))
	return success(j.Source(), jobs)
}

func (j *JoobleAdapter) mapJob(item joobleJob) models.Job {
	externalID := item.ID.String()
	title := normalize.CleanField(item.Title)
	company := normalize.CleanField(item.Company)
	location := normalize.CleanField(item.Location)

	job := models.Job{
		ID:                 models.DeriveID(j.Source(), externalID),
		ExternalID:         externalID,
		Source:             j.Source(),
		Title:              title,
		Company:            company,
		Location:           location,
		DescriptionSnippet: normalize.Snippet(item.Snippet, snippetLength),
		Salary:             normalize.CleanField(item.Salary),
		JobType:            normalize.MapJobType(item.Type),
		WorkLocation:       normalize.InferWorkLocation(location, item.Title, item.Snippet),
		ApplyURL:           item.Link,
		AutoApplyStatus:    models.AutoApplyPending,
	}

	// Jooble reports salary as free text only; fall back to the range regex.
	if r, ok := normalize.ParseSalaryText(job.Salary); ok {
		job.SalaryMin = r.Min
		job.SalaryMax = r.Max
		job.SalaryCurrency = r.Currency
	}

	if item.Updated != "" {
		if t, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			job.PostedDate = t
		}
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = j.now().UTC()
	}

	dedupe.Fingerprint(&job)
	return job
}
