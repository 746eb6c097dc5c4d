package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tachy/internal/generator"
	"github.com/verte-zerg/tachy/internal/itempool"
	"github.com/verte-zerg/tachy/internal/store"
	"github.com/verte-zerg/tachy/internal/trainer"
)

var (
	poolSeed   int64
	poolLength int
	poolTier   int
	poolScore  float64
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Use the rated item pool",
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Suggest the next item and print a stimulus for it",
		Args:  cobra.NoArgs,
		RunE:  runPoolNextCmd,
	}
	next.Flags().Int64Var(&poolSeed, "seed", 0, "random seed (0 uses the clock)")

	record := &cobra.Command{
		Use:   "record",
		Short: "Record an outcome on an item",
		Args:  cobra.NoArgs,
		RunE:  runPoolRecordCmd,
	}
	record.Flags().IntVar(&poolLength, "length", 0, fmt.Sprintf("item length (%d-%d)", itempool.MinPoolLength, itempool.MaxPoolLength))
	record.Flags().IntVar(&poolTier, "tier", 1, fmt.Sprintf("charset tier (1-%d)", itempool.MaxTier))
	record.Flags().Float64Var(&poolScore, "score", 0, "observed score in [0, 1]")
	for _, name := range []string{"length", "score"} {
		if err := record.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(next, record)
	return cmd
}

func runPoolNextCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withLearner(ctx, func(st *store.Store, learner string) error {
		session, err := trainer.NewPoolSession(ctx, st, learner, generator.New(poolSeed))
		if err != nil {
			return err
		}
		stim := session.Next()
		r := session.Rating()
		slog.Debug("pool item selected", "rating", r.Rating, "deviation", r.Deviation, "label", stim.Label)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", stim.Label, stim.Text)
		return err
	})
}

func runPoolRecordCmd(cmd *cobra.Command, _ []string) error {
	if poolLength < itempool.MinPoolLength || poolLength > itempool.MaxPoolLength {
		return fmt.Errorf("--length must be between %d and %d", itempool.MinPoolLength, itempool.MaxPoolLength)
	}
	if poolTier < 1 || poolTier > itempool.MaxTier {
		return fmt.Errorf("--tier must be between 1 and %d", itempool.MaxTier)
	}
	if poolScore < 0 || poolScore > 1 {
		return fmt.Errorf("--score must be between 0 and 1")
	}
	ctx := cmd.Context()
	return withLearner(ctx, func(st *store.Store, learner string) error {
		session, err := trainer.NewPoolSession(ctx, st, learner, generator.New(0))
		if err != nil {
			return err
		}
		c := itempool.Tier(poolTier)
		item := itempool.Item{Length: poolLength, Charset: c, Rating: itempool.ItemRating(poolLength, c)}
		res, err := session.Score(ctx, item, poolScore)
		if err != nil {
			return err
		}
		slog.Debug("pool outcome recorded", "item", item.Rating, "expected", res.Expected, "k", res.K)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Rating %.1f ± %.1f (item %.0f, expected %.2f)\n", res.Rating, res.Deviation, item.Rating, res.Expected)
		return err
	})
}
