package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfuse/internal/models"
	"jobfuse/internal/normalize"
)

func TestTitleHash_NormalizesCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, TitleHash("Software Engineer"), TitleHash("  software engineer "))
	assert.NotEqual(t, TitleHash("Software Engineer"), TitleHash("Senior Software Engineer"))
}

func TestCompanyLocationHash(t *testing.T) {
	assert.Equal(t,
		CompanyLocationHash("Acme", "Berlin"),
		CompanyLocationHash(" ACME ", " berlin "))
	assert.NotEqual(t,
		CompanyLocationHash("Acme", "Berlin"),
		CompanyLocationHash("Acme", "Munich"))
}

func TestFingerprint_StampsHashes(t *testing.T) {
	job := models.Job{Title: "Engineer", Company: "Acme", Location: "Berlin"}
	key := Fingerprint(&job)

	require.NotEmpty(t, job.TitleHash)
	require.NotEmpty(t, job.CompanyLocationHash)
	assert.Equal(t, job.TitleHash+":"+job.CompanyLocationHash, key)
}

func TestCollapse_FirstSeenWins(t *testing.T) {
	jobs := []models.Job{
		{ExternalID: "a1", Source: "adzuna", Title: "Engineer", Company: "Acme", Location: "Berlin"},
		{ExternalID: "b1", Source: "jooble", Title: "engineer", Company: "ACME", Location: "berlin"},
		{ExternalID: "b2", Source: "jooble", Title: "Designer", Company: "Acme", Location: "Berlin"},
	}

	out := Collapse(jobs)

	require.Len(t, out, 2)
	assert.Equal(t, "a1", out[0].ExternalID, "the earlier-declared source's entry survives")
	assert.Equal(t, "b2", out[1].ExternalID)
}

func TestCollapse_EmptyBatch(t *testing.T) {
	assert.Empty(t, Collapse(nil))
}

// Two sources report the same posting with different markup and encoding;
// after adapter-time normalization both fingerprint identically and the
// batch collapses to one job.
func TestCollapse_AcrossSourceEncodingDifferences(t *testing.T) {
	fromA := models.Job{
		ExternalID: "adz-1",
		Source:     "adzuna",
		Title:      normalize.CleanField("<b>Software Engineer</b> "),
		Company:    normalize.CleanField("Acme&amp;Co"),
		Location:   normalize.CleanField("Berlin"),
	}
	fromB := models.Job{
		ExternalID: "joo-9",
		Source:     "jooble",
		Title:      normalize.CleanField("Software Engineer"),
		Company:    normalize.CleanField("Acme&Co"),
		Location:   normalize.CleanField("Berlin"),
	}

	out := Collapse([]models.Job{fromA, fromB})

	require.Len(t, out, 1)
	assert.Equal(t, "adz-1", out[0].ExternalID)
	assert.Equal(t, "Acme&Co", out[0].Company)
}
