package domain

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state reported by the remote job service.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further status transition can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Handle is the opaque identifier a submission returns. All subsequent
// status queries for the job are addressed by it. Submit guarantees it
// is non-empty.
type Handle string

// JobOutcome is what polling a handle ultimately produced.
type JobOutcome struct {
	Status Status
	// Result holds the service's completed payload, byte-for-byte.
	// Set only when Status is completed.
	Result json.RawMessage
	// ErrorMessage is the service-supplied failure reason, verbatim.
	// Set only when Status is failed.
	ErrorMessage string
	// Attempts is how many status requests were issued before the
	// terminal state was observed.
	Attempts int
}

// Run represents a single submit-and-wait workflow invocation.
type Run struct {
	ID        string    `json:"run_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// RunReport holds the outcome of a completed run.
type RunReport struct {
	Run          Run
	Handle       Handle
	RequestPath  string
	ResultPath   string
	Attempts     int
	Success      bool
	ErrorMessage string
	CompletedAt  time.Time
}
