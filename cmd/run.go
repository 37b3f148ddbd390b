package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/catalog"
	"github.com/qweylin/studypacer/internal/clock/system"
	"github.com/qweylin/studypacer/internal/config"
	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/metrics"
	"github.com/qweylin/studypacer/internal/pacing"
	"github.com/qweylin/studypacer/internal/parser"
	"github.com/qweylin/studypacer/internal/platform"
	"github.com/qweylin/studypacer/internal/progress"
	"github.com/qweylin/studypacer/internal/progress/sinks"
	"github.com/qweylin/studypacer/internal/scheduler"
	"github.com/qweylin/studypacer/internal/session"
	"github.com/qweylin/studypacer/internal/study"
)

// newRunCmd creates and configures the 'run' subcommand, the engine itself.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Discover outstanding items and pace their progress to completion",
		Long: `Fetches the catalog, resolves per-item submission parameters, and
starts one paced worker per outstanding item. Interrupt with Ctrl-C to stop
cooperatively; completed work is reported either way.`,
		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sess, err := buildSession(cfg)
	if err != nil {
		return err
	}
	logger.Debug("session loaded", zap.Strings("cookies", sess.CookieNames()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	hub := progress.NewHub(
		progress.Config{Logger: logger},
		sinks.NewLogSink(logger),
		sinks.NewPrometheusSink(),
	)
	defer func() {
		if err := hub.Close(context.Background()); err != nil {
			logger.Warn("progress hub close", zap.Error(err))
		}
	}()

	client := platform.NewClient(platform.Config{
		BaseURL:        cfg.Platform.BaseURL,
		Timeout:        cfg.RequestTimeout(),
		MaxConnections: cfg.Platform.MaxConnections,
	}, sess)
	clk := system.New()

	fetcher := catalog.New(
		client,
		parser.Catalog{},
		pacing.New(pacing.Config{Interval: cfg.PageDelay()}),
		catalog.Config{Category: cfg.Platform.Category},
		logger,
	)
	resolver := study.NewResolver(client, parser.HiddenFields{}, cfg.Platform.Category, logger)
	submitter := study.NewSubmitter(client, clk, study.SubmitterConfig{
		Category:    cfg.Platform.Category,
		MaxAttempts: cfg.Run.RetryAttempts,
	}, logger)

	sched := scheduler.New(fetcher, resolver, submitter, clk, hub, scheduler.Config{
		MaxConcurrentItems: cfg.Run.MaxConcurrentItems,
		StartStagger:       cfg.StartStagger(),
		Interval:           cfg.UpdateInterval(),
	}, logger)

	summary, err := sched.Run(ctx)
	printSummary(cmd, summary)
	switch {
	case errors.Is(err, learner.ErrAuthExpired):
		return fmt.Errorf("session expired, run 'studypacer login' again: %w", err)
	case errors.Is(err, context.Canceled):
		logger.Info("run interrupted, completed work reported above")
		return nil
	default:
		return err
	}
}

func buildSession(cfg config.Config) (*session.Context, error) {
	cookies := session.ParseCookies(cfg.Cookies)
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no session cookies in config, run 'studypacer login' first")
	}
	session.Repair(cookies)
	return session.New(cookies)
}

func printSummary(cmd *cobra.Command, s learner.Summary) {
	cmd.Printf("discovered %d, resolved %d, scheduled %d, dropped %d\n",
		s.Discovered, s.Resolved, s.Scheduled, s.Dropped)
	cmd.Printf("succeeded %d, failed %d, cancelled %d\n",
		s.Succeeded, s.Failed, s.Cancelled)
	cmd.Printf("submitted %ds of progress in %s\n",
		s.SubmittedSeconds, s.Elapsed.Round(time.Second))
}
