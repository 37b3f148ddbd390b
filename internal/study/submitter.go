package study

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/metrics"
	"github.com/qweylin/studypacer/internal/platform"
)

// SubmitterConfig controls retry behavior and pre-request jitter.
type SubmitterConfig struct {
	// Category is the PlanId carried in the Referer.
	Category string
	// MaxAttempts bounds tries per Submit call (default 3).
	MaxAttempts int
	// JitterMin/JitterMax bound the randomized pre-request delay.
	JitterMin time.Duration
	JitterMax time.Duration
}

// Submitter issues one bounded progress-delta request with retry and
// exponential backoff.
type Submitter struct {
	client *resty.Client
	clock  learner.Clock
	cfg    SubmitterConfig
	logger *zap.Logger
}

// NewSubmitter constructs a Submitter.
func NewSubmitter(client *resty.Client, clock learner.Clock, cfg SubmitterConfig, logger *zap.Logger) *Submitter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.JitterMin <= 0 {
		cfg.JitterMin = 100 * time.Millisecond
	}
	if cfg.JitterMax <= cfg.JitterMin {
		cfg.JitterMax = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		client: client,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Submit records min(seconds, 60) seconds of progress for the item. A
// success status ends the call regardless of body content; transport
// failures retry with exponential backoff until the attempt budget runs out.
func (s *Submitter) Submit(ctx context.Context, params learner.ItemParameters, seconds int) error {
	submit := seconds
	if submit > learner.MaxDeltaSeconds {
		submit = learner.MaxDeltaSeconds
	}

	referer := s.client.BaseURL + platform.DetailPath +
		"?Id=" + params.RefID + "&PlanId=" + s.cfg.Category

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		// Randomized pre-request delay so thirty workers never line up.
		if err := s.clock.Sleep(ctx, learner.RandomBetween(s.cfg.JitterMin, s.cfg.JitterMax)); err != nil {
			return err
		}

		res, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"Id":        params.NewID,
				"pTime":     strconv.Itoa(submit),
				"Mins":      params.PassLine,
				"refId":     params.RefID,
				"StudentId": params.StudentID,
				// The platform's own field name; the misspelling is
				// part of the wire contract.
				"StydyTime": params.StudyTime,
				"SessionId": params.SessionID,
			}).
			SetHeader("Referer", referer).
			Get(platform.UpdatePath)

		switch {
		case err != nil:
			lastErr = &learner.TransportError{Op: "submit progress", Err: err}
			s.logger.Warn("progress submission failed",
				zap.Int("attempt", attempt+1), zap.Error(err))
		case res.StatusCode() != http.StatusOK:
			lastErr = &learner.TransportError{Op: "submit progress", StatusCode: res.StatusCode()}
			s.logger.Warn("progress submission rejected",
				zap.Int("attempt", attempt+1), zap.Int("status", res.StatusCode()))
		default:
			s.logger.Debug("progress submitted",
				zap.Int("seconds", submit), zap.Int("attempt", attempt+1))
			return nil
		}

		if attempt < s.cfg.MaxAttempts-1 {
			metrics.ObserveSubmissionRetry()
			if err := s.clock.Sleep(ctx, learner.Backoff(attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}
