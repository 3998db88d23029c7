package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
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

var tracer = telemetry.GetTracer("jobfuse/adapters")

const (
	adzunaDefaultWhere = "remote"
	adzunaPageSize     = 50
	snippetLength      = 280
)

// AdzunaAdapter fetches postings from the Adzuna public API
// (GET {base}/{country}/search/{page} with credentials as query params).
type AdzunaAdapter struct {
	cfg    config.AggregatorConfig
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewAdzunaAdapter(cfg config.AggregatorConfig, timeout time.Duration, logger *zap.Logger) *AdzunaAdapter {
	return &AdzunaAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

func (a *AdzunaAdapter) Source() string { return a.cfg.Name }

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

func (a *AdzunaAdapter) Fetch(ctx context.Context, filters models.JobSearchFilters) FetchResult {
	ctx, span := tracer.Start(ctx, "AdzunaAdapter.Fetch")
	defer span.End()

	if !a.cfg.Enabled {
		return failure(a.Source(), errors.ConfigMissing("adzuna adapter disabled", nil))
	}
	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		return failure(a.Source(), errors.ConfigMissing("ADZUNA_APP_ID / ADZUNA_APP_KEY not set", nil))
	}

	reqURL := a.buildSearchURL(filters)
	span.SetAttributes(telemetry.String("http.url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failure(a.Source(), errors.SourceUnavailable("creating request", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		span.RecordError(err)
		a.logger.Warn("adzuna request failed", zap.Error(err))
		return failure(a.Source(), errors.SourceUnavailable("executing request", err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			a.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body))
		span.RecordError(err)
		return failure(a.Source(), errors.SourceUnavailable("unexpected status", err))
	}

	var payload adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return failure(a.Source(), errors.SourceUnavailable("decoding response", err))
	}

	jobs := make([]models.Job, 0, len(payload.Results))
	for _, r := range payload.Results {
		jobs = append(jobs, a.mapResult(r))
	}

	span.SetAttributes(telemetry.Int("jobs.count", len(jobs)))
	a.logger.Debug("adzuna fetch complete", zap.Int("count", len(jobs)))
	return success(a.Source(), jobs)
}

func (a *AdzunaAdapter) buildSearchURL(filters models.JobSearchFilters) string {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.cfg.BaseURL, a.cfg.Country, page)

	where := filters.Location
	if where == "" {
		where = adzunaDefaultWhere
	}

	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", filters.Keywords)
	params.Set("where", where)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	if filters.Radius > 0 {
		params.Set("distance", strconv.Itoa(filters.Radius))
	}
	if filters.SalaryMin > 0 {
		params.Set("salary_min", strconv.Itoa(int(filters.SalaryMin)))
	}
	if filters.SalaryMax > 0 {
		params.Set("salary_max", strconv.Itoa(int(filters.SalaryMax)))
	}

	return endpoint + "?" + params.Encode()
}

func (a *AdzunaAdapter) mapResult(r adzunaResult) models.Job {
	title := normalize.CleanField(r.Title)
	company := normalize.CleanField(r.Company.DisplayName)
	location := normalize.CleanField(r.Location.DisplayName)

	job := models.Job{
		ID:                 models.DeriveID(a.Source(), r.ID),
		ExternalID:         r.ID,
		Source:             a.Source(),
		Title:              title,
		Company:            company,
		Location:           location,
		DescriptionSnippet: normalize.Snippet(r.Description, snippetLength),
		SalaryMin:          r.SalaryMin,
		SalaryMax:          r.SalaryMax,
		JobType:            normalize.MapJobType(firstNonEmpty(r.ContractTime, r.ContractType)),
		WorkLocation:       normalize.InferWorkLocation(location, r.Title, r.Description),
		ApplyURL:           r.RedirectURL,
		AutoApplyStatus:    models.AutoApplyPending,
	}

	if job.SalaryMin > 0 || job.SalaryMax > 0 {
		job.Salary = fmt.Sprintf("%.0f - %.0f", job.SalaryMin, job.SalaryMax)
	}

	if r.Created != "" {
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			job.PostedDate = t
		}
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = a.now().UTC()
	}

	dedupe.Fingerprint(&job)
	return job
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
