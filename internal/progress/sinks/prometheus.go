package sinks

import (
	"context"

	"github.com/qweylin/studypacer/internal/metrics"
	"github.com/qweylin/studypacer/internal/progress"
)

// PrometheusSink maps the submission event stream onto the service's
// Prometheus collectors.
type PrometheusSink struct{}

// NewPrometheusSink initializes the shared collectors and returns the sink.
func NewPrometheusSink() *PrometheusSink {
	metrics.Init()
	return &PrometheusSink{}
}

// Consume updates the collectors from the provided batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageItemScheduled:
			metrics.IncActiveWorkers()
		case progress.StageItemDone:
			metrics.ObserveItem("done")
			metrics.DecActiveWorkers()
		case progress.StageItemFailed:
			metrics.ObserveItem("failed")
			metrics.DecActiveWorkers()
		case progress.StageItemCancelled:
			metrics.ObserveItem("cancelled")
			metrics.DecActiveWorkers()
		case progress.StageItemDropped:
			metrics.ObserveItem("dropped")
		case progress.StageProbe:
			metrics.ObserveSubmission("probe", 0)
		case progress.StageSubmitOK:
			metrics.ObserveSubmission("success", evt.Seconds)
		case progress.StageSubmitRetry:
			metrics.ObserveSubmission("failure", 0)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
