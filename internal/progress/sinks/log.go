// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/progress"
)

// LogSink emits structured logs for the submission event stream. It is the
// default sink; the run's observable history is its log output.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunID.String()),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.ItemID != 0 {
			fields = append(fields, zap.Int("item_id", evt.ItemID))
		}
		if evt.ItemName != "" {
			fields = append(fields, zap.String("item", evt.ItemName))
		}
		if evt.Seconds != 0 {
			fields = append(fields, zap.Int("seconds", evt.Seconds))
		}
		if evt.Remaining != 0 {
			fields = append(fields, zap.Int("remaining", evt.Remaining))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
