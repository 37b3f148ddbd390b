// Package scheduler orchestrates one submission run: catalog discovery,
// parameter resolution, and the fan-out of pacing workers.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/metrics"
	"github.com/qweylin/studypacer/internal/progress"
	"github.com/qweylin/studypacer/internal/worker"
)

// Config controls run-wide concurrency and pacing.
type Config struct {
	// MaxConcurrentItems caps the number of simultaneously paced items.
	// Items past the cap are dropped with a warning, not queued.
	MaxConcurrentItems int
	// StartStagger separates worker start times: worker i waits
	// i * StartStagger before its probe.
	StartStagger time.Duration
	// Interval and failure backoff bounds are handed through to workers.
	Interval          time.Duration
	FailureBackoffMin time.Duration
	FailureBackoffMax time.Duration
}

// Scheduler wires a catalog source, a parameter resolver, and a submitter
// into a complete run.
type Scheduler struct {
	catalog   learner.CatalogSource
	resolver  learner.ParameterSource
	submitter learner.Submitter
	clock     learner.Clock
	hub       *progress.Hub
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Scheduler.
func New(
	catalog learner.CatalogSource,
	resolver learner.ParameterSource,
	submitter learner.Submitter,
	clock learner.Clock,
	hub *progress.Hub,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if cfg.MaxConcurrentItems <= 0 {
		cfg.MaxConcurrentItems = 30
	}
	if cfg.StartStagger <= 0 {
		cfg.StartStagger = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		catalog:   catalog,
		resolver:  resolver,
		submitter: submitter,
		clock:     clock,
		hub:       hub,
		cfg:       cfg,
		logger:    logger,
	}
}

type resolvedItem struct {
	item   learner.CatalogItem
	params learner.ItemParameters
}

// Run executes one full submission pass and reports what happened. A single
// item's failure never aborts its siblings; cancellation stops everyone
// cooperatively and the summary still covers the work that finished.
func (s *Scheduler) Run(ctx context.Context) (learner.Summary, error) {
	started := s.clock.Now()
	runID := uuid.New()
	summary := learner.Summary{}

	s.hub.Emit(progress.Event{RunID: runID, TS: s.clock.Now(), Stage: progress.StageRunStart})
	defer func() {
		summary.Elapsed = s.clock.Now().Sub(started)
		s.hub.Emit(progress.Event{
			RunID:   runID,
			TS:      s.clock.Now(),
			Stage:   progress.StageRunDone,
			Seconds: summary.SubmittedSeconds,
		})
	}()

	items, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		return summary, err
	}
	summary.Discovered = len(items)
	if len(items) == 0 {
		s.logger.Info("no schedulable items discovered")
		return summary, nil
	}
	s.logger.Info("catalog fetched", zap.Int("items", len(items)))

	resolved := s.resolveAll(ctx, items, &summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if len(resolved) == 0 {
		s.logger.Warn("no items yielded usable parameters")
		return summary, nil
	}

	if len(resolved) > s.cfg.MaxConcurrentItems {
		s.logger.Warn("item count exceeds concurrency cap, dropping overflow",
			zap.Int("items", len(resolved)),
			zap.Int("cap", s.cfg.MaxConcurrentItems))
		for _, r := range resolved[s.cfg.MaxConcurrentItems:] {
			summary.Dropped++
			s.hub.Emit(progress.Event{
				RunID:    runID,
				TS:       s.clock.Now(),
				Stage:    progress.StageItemDropped,
				ItemID:   r.item.ID,
				ItemName: r.item.Name,
				Note:     "over concurrency cap",
			})
		}
		resolved = resolved[:s.cfg.MaxConcurrentItems]
	}
	summary.Scheduled = len(resolved)

	outcomes := s.fanOut(ctx, runID, resolved)
	for _, outcome := range outcomes {
		summary.SubmittedSeconds += outcome.SubmittedSeconds
		switch {
		case outcome.Succeeded():
			summary.Succeeded++
		case errors.Is(outcome.Err, context.Canceled) || errors.Is(outcome.Err, context.DeadlineExceeded):
			summary.Cancelled++
			s.hub.Emit(progress.Event{
				RunID:    runID,
				TS:       s.clock.Now(),
				Stage:    progress.StageItemCancelled,
				ItemID:   outcome.ItemID,
				ItemName: outcome.ItemName,
				Note:     outcome.Err.Error(),
			})
		default:
			summary.Failed++
			s.hub.Emit(progress.Event{
				RunID:    runID,
				TS:       s.clock.Now(),
				Stage:    progress.StageItemFailed,
				ItemID:   outcome.ItemID,
				ItemName: outcome.ItemName,
				Note:     outcome.Err.Error(),
			})
		}
	}
	return summary, ctx.Err()
}

// resolveAll fetches parameters for every discovered item one at a time.
// Items whose detail page is missing a token are skipped, not fatal.
func (s *Scheduler) resolveAll(ctx context.Context, items []learner.CatalogItem, summary *learner.Summary) []resolvedItem {
	resolved := make([]resolvedItem, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			return resolved
		}
		params, err := s.resolver.Resolve(ctx, item.ID)
		if err != nil {
			s.logger.Warn("skipping item, parameters unavailable",
				zap.Int("item_id", item.ID),
				zap.String("item", item.Name),
				zap.Error(err))
			metrics.ObserveItem("unresolved")
			continue
		}
		if !params.Complete() {
			s.logger.Warn("skipping item, detail page returned a partial parameter set",
				zap.Int("item_id", item.ID),
				zap.String("item", item.Name))
			metrics.ObserveItem("unresolved")
			continue
		}
		summary.Resolved++
		resolved = append(resolved, resolvedItem{item: item, params: params})
	}
	return resolved
}

// fanOut starts one staggered worker per resolved item and joins them all.
func (s *Scheduler) fanOut(ctx context.Context, runID uuid.UUID, resolved []resolvedItem) []learner.SubmissionOutcome {
	outcomes := make([]learner.SubmissionOutcome, len(resolved))
	var wg sync.WaitGroup
	for idx, r := range resolved {
		s.hub.Emit(progress.Event{
			RunID:     runID,
			TS:        s.clock.Now(),
			Stage:     progress.StageItemScheduled,
			ItemID:    r.item.ID,
			ItemName:  r.item.Name,
			Remaining: r.item.RequiredSeconds(),
		})
		w := worker.New(s.submitter, s.clock, s.hub, runID, worker.Config{
			StartDelay:        time.Duration(idx) * s.cfg.StartStagger,
			Interval:          s.cfg.Interval,
			FailureBackoffMin: s.cfg.FailureBackoffMin,
			FailureBackoffMax: s.cfg.FailureBackoffMax,
		}, s.logger)

		wg.Add(1)
		go func(slot int, r resolvedItem) {
			defer wg.Done()
			outcomes[slot] = w.Run(ctx, r.item, r.params)
		}(idx, r)
	}
	wg.Wait()
	return outcomes
}
