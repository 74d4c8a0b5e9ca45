package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/asapgest/internal/asap"
	"github.com/dgallion1/asapgest/internal/pdmp"
	"github.com/dgallion1/asapgest/internal/report"
)

// Worker processes a single report job.
type Worker struct {
	gateway *pdmp.Client
	log     *slog.Logger

	maxConcurrentSubmit int
}

func NewWorker(gateway *pdmp.Client, log *slog.Logger, maxSubmit int) *Worker {
	return &Worker{
		gateway:             gateway,
		log:                 log,
		maxConcurrentSubmit: maxSubmit,
	}
}

// Process runs the full ingest pipeline for a job: parse, then submit the
// report summary and each sealed dispense group to the PDMP gateway.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "report_id", job.ReportID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := asap.Parse(job.Text())
	if err != nil {
		// Only the missing header marker is fatal; nothing downstream
		// runs on a document that never existed.
		log.Error("invalid report", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusInvalidFormat, "parsing")
		return
	}

	sum := doc.Summarize()
	job.SetDocument(doc, sum)
	log.Info("parsed report",
		"version", sum.Version,
		"sections", sum.SectionCount,
		"dispenses", sum.DispenseCount,
	)
	if len(sum.MissingRequired) > 0 {
		log.Warn("required sections missing", "headers", sum.MissingRequired)
	}

	// Phase 2: Submit to the PDMP gateway.
	job.SetStatus(StatusSubmitting, "submitting")
	hadErrors := false

	if err := w.submitWithRetry(ctx, log, "report", func(ctx context.Context) error {
		return w.gateway.SubmitReport(ctx, pdmp.ReportSubmission{
			ReportID:        job.ReportID,
			Version:         sum.Version,
			SectionCount:    sum.SectionCount,
			DispenseCount:   sum.DispenseCount,
			MissingRequired: sum.MissingRequired,
		})
	}); err != nil {
		log.Error("report submission failed", "error", err)
		job.AddError(fmt.Sprintf("report: %s", err))
		hadErrors = true
	}

	groups := doc.Dispenses()
	sem := make(chan struct{}, w.maxConcurrentSubmit)
	results := make(chan error, len(groups))

	for i, g := range groups {
		sem <- struct{}{}
		go func(seq int, g asap.DispenseGroup) {
			defer func() { <-sem }()
			results <- w.submitWithRetry(ctx, log, fmt.Sprintf("dispense %d", seq), func(ctx context.Context) error {
				return w.gateway.SubmitDispense(ctx, pdmp.DispenseSubmission{
					ReportID: job.ReportID,
					Version:  sum.Version,
					Sequence: seq,
					Fields:   map[string]string(report.MergeFieldMaps(g.Sections())),
				})
			})
		}(i+1, g)
	}

	submitted := 0
	for range groups {
		if err := <-results; err != nil {
			job.AddError(err.Error())
			hadErrors = true
			continue
		}
		job.IncrSubmitted()
		submitted++
	}
	log.Info("submission complete", "submitted", submitted, "total", len(groups))

	switch {
	case hadErrors && submitted > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "submitting")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// submitWithRetry runs one gateway call with bounded retries on transient
// failures.
func (w *Worker) submitWithRetry(ctx context.Context, log *slog.Logger, what string, call func(context.Context) error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = call(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable submission error", "what", what, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if lastErr != nil {
		return fmt.Errorf("%s: %w", what, lastErr)
	}
	return nil
}
