package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qweylin/studypacer/internal/catalog"
	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/pacing"
	"github.com/qweylin/studypacer/internal/parser"
	"github.com/qweylin/studypacer/internal/platform"
)

// newCoursesCmd creates the 'courses' subcommand: catalog listing without
// any submission.
func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the outstanding catalog items without submitting anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sess, err := buildSession(cfg)
			if err != nil {
				return err
			}
			client := platform.NewClient(platform.Config{
				BaseURL:        cfg.Platform.BaseURL,
				Timeout:        cfg.RequestTimeout(),
				MaxConnections: cfg.Platform.MaxConnections,
			}, sess)

			fetcher := catalog.New(
				client,
				parser.Catalog{},
				pacing.New(pacing.Config{Interval: cfg.PageDelay()}),
				catalog.Config{Category: cfg.Platform.Category},
				logger,
			)
			items, err := fetcher.FetchCatalog(cmd.Context())
			if errors.Is(err, learner.ErrAuthExpired) {
				return fmt.Errorf("session expired, run 'studypacer login' again: %w", err)
			}
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Println("no outstanding items")
				return nil
			}

			cmd.Printf("%-8s %-10s %8s %10s  %s\n", "ID", "STATUS", "TOTAL", "COMPLETED", "NAME")
			for _, item := range items {
				cmd.Printf("%-8d %-10s %7dm %9dm  %s\n",
					item.ID, item.Status, item.TotalMinutes, item.CompletedMinutes, item.Name)
			}
			cmd.Printf("%d outstanding item(s)\n", len(items))
			return nil
		},
	}
}
