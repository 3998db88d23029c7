// Package dedupe computes the cross-source fingerprints and collapses
// duplicates within one aggregation batch. This is fingerprint equality,
// not fuzzy matching: near-duplicates with materially different titles are
// distinct postings on purpose. Cross-batch deduplication is the store's
// (external_id, source) upsert, not this package.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"jobfuse/internal/models"
)

// TitleHash is SHA-256 of the lowercased, trimmed title.
func TitleHash(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return hex.EncodeToString(sum[:])
}

// CompanyLocationHash is SHA-256 of the lowercased, trimmed company+location
// concatenation.
func CompanyLocationHash(company, location string) string {
	combined := strings.ToLower(strings.TrimSpace(company) + strings.TrimSpace(location))
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// Fingerprint stamps both hashes onto the job and returns the combined key.
// Hashes are derived, never hand-set: this is the only place they come from.
func Fingerprint(job *models.Job) string {
	job.TitleHash = TitleHash(job.Title)
	job.CompanyLocationHash = CompanyLocationHash(job.Company, job.Location)
	return job.TitleHash + ":" + job.CompanyLocationHash
}

// Collapse deduplicates a batch by combined fingerprint, first seen wins.
// The input order is the adapter declaration order, so for a fixed adapter
// set the retained entry is deterministic across runs.
func Collapse(jobs []models.Job) []models.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]models.Job, 0, len(jobs))
	for i := range jobs {
		key := Fingerprint(&jobs[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, jobs[i])
	}
	return out
}
