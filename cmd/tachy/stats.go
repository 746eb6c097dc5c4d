package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/stats"
	"github.com/verte-zerg/tachy/internal/store"
)

var (
	statsModality    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsColor       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsModality, "modality", "", "modality filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for scores")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colored curves")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	modality, err := resolveStatsModality(statsModality)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	return withExistingLearner(ctx, out, func(st *store.Store, learner string) error {
		cfg := model.StatsConfig{
			Learner:     learner,
			Modality:    modality,
			Since:       sinceTime,
			Last:        statsLast,
			CurveWindow: statsCurveWindow,
		}
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := stats.RenderProfiles(out, report); err != nil {
			return err
		}
		if err := stats.RenderSummary(out, report.Summaries); err != nil {
			return err
		}
		return stats.RenderCurves(out, report.Attempts, cfg.CurveWindow, 0, stats.ShouldUseColor(out, statsColor))
	})
}
