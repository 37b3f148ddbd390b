// Package worker implements the per-item submission pacing loop.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/progress"
)

// ProbeSeconds is the size of the opening submission. The platform treats
// the first call of a session as a handshake; it is not counted against the
// item's outstanding time.
const ProbeSeconds = 1

// Config controls Worker pacing.
type Config struct {
	// StartDelay holds the worker back before its probe so that siblings
	// do not hit the platform at the same instant.
	StartDelay time.Duration
	// Interval separates successful submissions (default 60s).
	Interval time.Duration
	// FailureBackoffMin/Max bound the randomized pause after a failed
	// submission before the same delta is tried again.
	FailureBackoffMin time.Duration
	FailureBackoffMax time.Duration
}

// Worker drives one catalog item from its current progress to completion by
// submitting bounded deltas on a fixed cadence.
type Worker struct {
	submitter learner.Submitter
	clock     learner.Clock
	hub       *progress.Hub
	runID     uuid.UUID
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	submitter learner.Submitter,
	clock learner.Clock,
	hub *progress.Hub,
	runID uuid.UUID,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.FailureBackoffMin <= 0 {
		cfg.FailureBackoffMin = 10 * time.Second
	}
	if cfg.FailureBackoffMax <= cfg.FailureBackoffMin {
		cfg.FailureBackoffMax = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		submitter: submitter,
		clock:     clock,
		hub:       hub,
		runID:     runID,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run paces item to completion. The opening probe never reduces the
// outstanding time; every later success takes min(remaining, 60) off it. A
// failed submission backs off a randomized 10-30s and retries the same delta
// for as long as the context lives. The returned outcome carries either the
// cumulative submitted seconds or the cancellation error, never both.
func (w *Worker) Run(ctx context.Context, item learner.CatalogItem, params learner.ItemParameters) learner.SubmissionOutcome {
	outcome := learner.SubmissionOutcome{ItemID: item.ID, ItemName: item.Name}
	remaining := item.RequiredSeconds()
	logger := w.logger.With(zap.Int("item_id", item.ID), zap.String("item", item.Name))

	if w.cfg.StartDelay > 0 {
		if err := w.clock.Sleep(ctx, w.cfg.StartDelay); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	// The probe counts as a submission but never toward the cumulative
	// total; the platform treats it as a handshake, not progress.
	if err := w.submitUntilAccepted(ctx, logger, item, params, ProbeSeconds, remaining); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Submissions++
	w.emit(progress.StageProbe, item, ProbeSeconds, remaining, "")

	for remaining > 0 {
		if err := w.clock.Sleep(ctx, w.cfg.Interval); err != nil {
			outcome.Err = err
			return outcome
		}

		delta := remaining
		if delta > learner.MaxDeltaSeconds {
			delta = learner.MaxDeltaSeconds
		}
		if err := w.submitUntilAccepted(ctx, logger, item, params, delta, remaining); err != nil {
			outcome.Err = err
			return outcome
		}
		remaining -= delta
		outcome.Submissions++
		outcome.SubmittedSeconds += delta
		w.emit(progress.StageSubmitOK, item, delta, remaining, "")
		logger.Debug("progress delta accepted",
			zap.Int("seconds", delta), zap.Int("remaining", remaining))
	}

	w.emit(progress.StageItemDone, item, outcome.SubmittedSeconds, 0, "")
	logger.Info("item complete",
		zap.Int("submitted_seconds", outcome.SubmittedSeconds),
		zap.Int("submissions", outcome.Submissions))
	return outcome
}

// submitUntilAccepted retries one delta until the platform accepts it or the
// context ends. The submitter already retries transient faults internally;
// this outer loop handles the platform being down for minutes at a time.
func (w *Worker) submitUntilAccepted(ctx context.Context, logger *zap.Logger, item learner.CatalogItem, params learner.ItemParameters, seconds, remaining int) error {
	for {
		err := w.submitter.Submit(ctx, params, seconds)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.emit(progress.StageSubmitRetry, item, 0, remaining, err.Error())
		pause := learner.RandomBetween(w.cfg.FailureBackoffMin, w.cfg.FailureBackoffMax)
		logger.Warn("submission rejected, backing off",
			zap.Duration("pause", pause), zap.Error(err))
		if err := w.clock.Sleep(ctx, pause); err != nil {
			return err
		}
	}
}

func (w *Worker) emit(stage progress.Stage, item learner.CatalogItem, seconds, remaining int, note string) {
	w.hub.Emit(progress.Event{
		RunID:     w.runID,
		TS:        w.clock.Now(),
		Stage:     stage,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Seconds:   seconds,
		Remaining: remaining,
		Note:      note,
	})
}
