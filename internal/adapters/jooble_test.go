package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfuse/internal/config"
	"jobfuse/internal/models"
)

func joobleConfig(baseURL string) config.AggregatorConfig {
	return config.AggregatorConfig{
		Name:    "jooble",
		AppKey:  "secret-key",
		BaseURL: baseURL,
		Enabled: true,
	}
}

func TestJoobleFetch_Success(t *testing.T) {
	payload := `{
		"totalCount": 1,
		"jobs": [
			{
				"id": 987654321,
				"title": "Backend Engineer",
				"location": "Remote",
				"snippet": "Go services. Salary 90,000 - 120,000 USD yearly.",
				"salary": "90,000 - 120,000 USD",
				"source": "example.com",
				"type": "Full-time",
				"link": "https://jooble.example/987654321",
				"company": "Globex",
				"updated": "2026-08-22T00:00:00Z"
			}
		]
	}`

	var gotPath atomic.Value
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotBody.Store(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	adapter := NewJoobleAdapter(joobleConfig(srv.URL), 5*time.Second, zap.NewNop())
	result := adapter.Fetch(context.Background(), models.JobSearchFilters{
		Keywords: "backend",
		Location: "Berlin",
		Page:     2,
	})

	require.True(t, result.Success)
	require.Len(t, result.Jobs, 1)

	assert.Equal(t, "/secret-key", gotPath.Load(), "API key travels in the path")
	body := gotBody.Load().(map[string]any)
	assert.Equal(t, "backend", body["keywords"])
	assert.Equal(t, "Berlin", body["location"])
	assert.Equal(t, "2", body["page"])

	j := result.Jobs[0]
	assert.Equal(t, "987654321", j.ExternalID)
	assert.Equal(t, "jooble", j.Source)
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, "Globex", j.Company)
	assert.Equal(t, models.JobTypeFullTime, j.JobType)
	assert.Equal(t, models.WorkLocationRemote, j.WorkLocation)
	assert.Equal(t, 90000.0, j.SalaryMin, "salary parsed from free text")
	assert.Equal(t, 120000.0, j.SalaryMax)
	assert.Equal(t, "USD", j.SalaryCurrency)
	assert.Equal(t, models.DeriveID("jooble", "987654321"), j.ID)
	assert.Equal(t, time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC), j.PostedDate.UTC())
}

func TestJoobleFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	adapter := NewJoobleAdapter(joobleConfig(srv.URL), 5*time.Second, zap.NewNop())
	result := adapter.Fetch(context.Background(), models.JobSearchFilters{})

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "403")
}

func TestJoobleFetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[not json`))
	}))
	defer srv.Close()

	adapter := NewJoobleAdapter(joobleConfig(srv.URL), 5*time.Second, zap.NewNop())
	result := adapter.Fetch(context.Background(), models.JobSearchFilters{})

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
}

func TestJoobleFetch_MissingKey_NoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := joobleConfig(srv.URL)
	cfg.AppKey = ""
	adapter := NewJoobleAdapter(cfg, 5*time.Second, zap.NewNop())
	result := adapter.Fetch(context.Background(), models.JobSearchFilters{})

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Zero(t, calls.Load())
}
