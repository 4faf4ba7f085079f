package ports

import (
	"context"

	"searchandwait/internal/core/domain"
)

// JobService defines the contract for driving an asynchronous job API.
type JobService interface {
	// Health probes the service's liveness endpoint. A non-nil error
	// means submitting work would be pointless.
	Health(ctx context.Context) error

	// Submit posts the payload and returns the handle the service
	// assigned to the job. The handle is never empty on success.
	Submit(ctx context.Context, payload map[string]any) (domain.Handle, error)

	// PollUntilTerminal queries the job's status until it completes,
	// fails, or the attempt budget runs out.
	PollUntilTerminal(ctx context.Context, handle domain.Handle) (*domain.JobOutcome, error)
}

// Storage defines the contract for capturing run artifacts.
type Storage interface {
	// InitRun creates the run directory structure.
	InitRun(ctx context.Context, runID string) error

	// SaveRequest captures the payload as it was submitted.
	SaveRequest(ctx context.Context, runID string, data []byte) error

	// SaveResult captures the service's raw terminal payload.
	SaveResult(ctx context.Context, runID string, data []byte) error

	// SaveReport captures the final run report.
	SaveReport(ctx context.Context, runID string, data []byte) error

	// RunPath returns the filesystem path for a given run ID.
	RunPath(runID string) string
}
