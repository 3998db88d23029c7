package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType classifies the employment arrangement of a posting. The zero value
// means the source did not report one (or reported something we do not map).
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
	JobTypeFreelance  JobType = "freelance"
)

// WorkLocation classifies where the work happens.
type WorkLocation string

const (
	WorkLocationRemote WorkLocation = "remote"
	WorkLocationHybrid WorkLocation = "hybrid"
	WorkLocationOnsite WorkLocation = "onsite"
)

// AutoApplyStatus is set by an external reviewer; new jobs start as pending.
type AutoApplyStatus string

const (
	AutoApplyPending    AutoApplyStatus = "pending_review"
	AutoApplyEligible   AutoApplyStatus = "eligible"
	AutoApplyIneligible AutoApplyStatus = "ineligible"
)

// ValidAutoApplyStatus reports whether s is one of the known status values.
func ValidAutoApplyStatus(s AutoApplyStatus) bool {
	switch s {
	case AutoApplyPending, AutoApplyEligible, AutoApplyIneligible:
		return true
	}
	return false
}

// Job is the canonical representation of a posting, independent of which
// aggregator reported it. (ExternalID, Source) is the natural key; ID is
// derived deterministically from it so repeated ingests assign the same ID.
type Job struct {
	ID                  string          `json:"id"`
	ExternalID          string          `json:"externalId"`
	Source              string          `json:"source"`
	Title               string          `json:"title"`
	Company             string          `json:"company"`
	Location            string          `json:"location"`
	DescriptionSnippet  string          `json:"descriptionSnippet"`
	Salary              string          `json:"salary"`
	SalaryMin           float64         `json:"salaryMin"`
	SalaryMax           float64         `json:"salaryMax"`
	SalaryCurrency      string          `json:"salaryCurrency"`
	JobType             JobType         `json:"jobType"`
	WorkLocation        WorkLocation    `json:"workLocation"`
	PostedDate          time.Time       `json:"postedDate"`
	ApplyURL            string          `json:"applyUrl"`
	AutoApplyStatus     AutoApplyStatus `json:"autoApplyStatus"`
	AutoApplyNotes      string          `json:"autoApplyNotes,omitempty"`
	TitleHash           string          `json:"titleHash"`
	CompanyLocationHash string          `json:"companyLocationHash"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// jobIDNamespace seeds deterministic job IDs; v5 UUID of (source, externalID)
// keeps the ID stable across repeated aggregations of the same posting.
var jobIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DeriveID returns the canonical job ID for a (source, externalID) pair.
func DeriveID(source, externalID string) string {
	return uuid.NewSHA1(jobIDNamespace, []byte(source+":"+externalID)).String()
}

func (j Job) MarshalBinary() ([]byte, error) {
	return json.Marshal(j)
}

func (j *Job) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, j)
}
