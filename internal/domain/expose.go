package domain

import "time"

// JobStatus enumerates exposé generation lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ExposeJob tracks one background exposé generation run. Progress only takes
// values from the fixed step table and never decreases while the job is
// non-terminal; PDFURL and CompletedAt are set only on completion.
type ExposeJob struct {
	ID          string     `json:"id"`
	PropertyID  string     `json:"propertyId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	PDFURL      string     `json:"pdfUrl,omitempty"`

	// Text produced by the generation step, consumed by the preview
	// projection. Not part of the status payload.
	GeneratedDescription string `json:"-"`
	GeneratedLocation    string `json:"-"`
}

// Clone returns an independent copy safe to hand to callers.
func (j *ExposeJob) Clone() *ExposeJob {
	if j == nil {
		return nil
	}
	out := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
