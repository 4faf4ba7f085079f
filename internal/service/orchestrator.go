package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"searchandwait/internal/core/domain"
	"searchandwait/internal/core/ports"
)

// Orchestrator coordinates the submit-and-wait workflow: health precheck,
// submission, polling, artifact capture.
type Orchestrator struct {
	jobs            ports.JobService
	storage         ports.Storage
	logger          *slog.Logger
	skipHealthCheck bool
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(jobs ports.JobService, storage ports.Storage, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		jobs:    jobs,
		storage: storage,
		logger:  logger,
	}
}

// SkipHealthCheck disables the liveness precheck before submission.
func (o *Orchestrator) SkipHealthCheck() {
	o.skipHealthCheck = true
}

// Run executes one complete workflow for the given payload. The returned
// report is populated even when err is non-nil, so callers always have the
// run ID and whatever artifacts were written before the failure.
func (o *Orchestrator) Run(ctx context.Context, payload map[string]any, summary string) (*domain.RunReport, error) {
	run := domain.Run{
		ID:        uuid.New().String(),
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	report := &domain.RunReport{Run: run}
	log := o.logger.With("run", run.ID)

	log.Info("starting run", "summary", summary)

	// Fail fast against a dead service instead of burning the poll budget.
	if !o.skipHealthCheck {
		if err := o.jobs.Health(ctx); err != nil {
			report.ErrorMessage = err.Error()
			log.Error("health precheck failed", "error", err)
			return report, err
		}
		log.Info("service healthy")
	}

	if err := o.storage.InitRun(ctx, run.ID); err != nil {
		report.ErrorMessage = fmt.Sprintf("init run: %v", err)
		return report, err
	}

	requestData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		report.ErrorMessage = fmt.Sprintf("encode payload: %v", err)
		return report, err
	}
	if err := o.storage.SaveRequest(ctx, run.ID, requestData); err != nil {
		log.Warn("failed to save request artifact", "error", err)
	} else {
		report.RequestPath = o.storage.RunPath(run.ID) + "/request.json"
	}

	handle, err := o.jobs.Submit(ctx, payload)
	if err != nil {
		report.ErrorMessage = fmt.Sprintf("submit: %v", err)
		log.Error("submission failed", "error", err)
		o.writeReport(ctx, report)
		return report, err
	}
	report.Handle = handle
	log.Info("job submitted", "handle", handle)

	outcome, err := o.jobs.PollUntilTerminal(ctx, handle)
	if err != nil {
		report.ErrorMessage = fmt.Sprintf("poll: %v", err)
		log.Error("polling failed", "handle", handle, "error", err)
		o.writeReport(ctx, report)
		return report, err
	}
	report.Attempts = outcome.Attempts

	if outcome.Status == domain.StatusFailed {
		report.ErrorMessage = outcome.ErrorMessage
		report.CompletedAt = time.Now().UTC()
		log.Error("job failed", "handle", handle, "attempts", outcome.Attempts,
			"error", outcome.ErrorMessage)
		o.writeReport(ctx, report)
		return report, fmt.Errorf("job %s failed: %s", handle, outcome.ErrorMessage)
	}

	if err := o.storage.SaveResult(ctx, run.ID, outcome.Result); err != nil {
		report.ErrorMessage = fmt.Sprintf("save result: %v", err)
		o.writeReport(ctx, report)
		return report, err
	}
	report.ResultPath = o.storage.RunPath(run.ID) + "/result_raw.json"

	report.Success = true
	report.CompletedAt = time.Now().UTC()
	o.writeReport(ctx, report)

	log.Info("run completed", "handle", handle, "attempts", outcome.Attempts,
		"artifacts", o.storage.RunPath(run.ID))
	return report, nil
}

// writeReport is best-effort; a report that fails to persist should never
// mask the run's real outcome.
func (o *Orchestrator) writeReport(ctx context.Context, report *domain.RunReport) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return
	}
	if err := o.storage.SaveReport(ctx, report.Run.ID, data); err != nil {
		o.logger.Warn("failed to save report artifact", "run", report.Run.ID, "error", err)
	}
}
