// Package main provides the CLI entrypoint for tachy.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tachy/internal/adaptive"
	"github.com/verte-zerg/tachy/internal/config"
	"github.com/verte-zerg/tachy/internal/generator"
	"github.com/verte-zerg/tachy/internal/ladder"
	"github.com/verte-zerg/tachy/internal/rating"
	"github.com/verte-zerg/tachy/internal/store"
	"github.com/verte-zerg/tachy/internal/trainer"
	"github.com/verte-zerg/tachy/internal/tui"
)

const (
	defaultLearner     = "default"
	defaultExposureMs  = 1200
	defaultCurveWindow = 5
	defaultLogLevel    = "info"
	minExposureMs      = 50
	maxExposureMs      = 10000
)

var errUnknownModality = errors.New("unknown modality")

var (
	rootLearner  string
	rootDBPath   string
	rootLogLevel string
	fileCfg      config.FileConfig

	spanSuccessStreak int
	spanExposureMs    int
	spanSeed          int64
	spanPool          bool

	recordScore  float64
	recordRating string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "tachy",
		Short:             "Adaptive flash-and-recall trainer",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
		RunE:              runSpanCmd,
	}
	rootCmd.PersistentFlags().StringVar(&rootLearner, "learner", defaultLearner, "learner name")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	addSpanFlags(rootCmd)

	rootCmd.AddCommand(newSpanCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newPoolCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// setup loads the config file, merges it under the flags and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "config" {
		// The file may be broken; config exists to fix it.
		return nil
	}
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg
	applyStringConfig(cmd, "learner", &rootLearner, fileCfg.Engine.Learner)
	applyStringConfig(cmd, "log-level", &rootLogLevel, fileCfg.Log.Level)

	level, err := config.ParseLevel(rootLogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func openStore() (*store.Store, error) {
	path := rootDBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	slog.Debug("opened store", "path", path)
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("failed to close db", "err", err)
	}
}

// withLearner opens the store, resolves the learner id and runs fn.
func withLearner(ctx context.Context, fn func(st *store.Store, learner string) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	learner, err := st.EnsureLearner(ctx, rootLearner)
	if err != nil {
		return fmt.Errorf("failed to resolve learner %q: %w", rootLearner, err)
	}
	return fn(st, learner)
}

// withExistingLearner is withLearner for read-only commands: a learner that
// was never recorded is reported on out and never created.
func withExistingLearner(ctx context.Context, out io.Writer, fn func(st *store.Store, learner string) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	learner, err := st.LookupLearner(ctx, rootLearner)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("learner not found", "learner", rootLearner)
		_, err = fmt.Fprintln(out, "No profiles found.")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to resolve learner %q: %w", rootLearner, err)
	}
	return fn(st, learner)
}

func addSpanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&spanSuccessStreak, "success-streak", ladder.DefaultSuccessStreak, "correct answers in a row needed to grow (2-10)")
	cmd.Flags().IntVar(&spanExposureMs, "exposure-ms", defaultExposureMs, "how long each stimulus is shown")
	cmd.Flags().Int64Var(&spanSeed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().BoolVar(&spanPool, "pool", false, "draw stimuli from the rated item pool instead of the ladder")
}

func newSpanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "span",
		Short: "Run the interactive span trainer",
		Args:  cobra.NoArgs,
		RunE:  runSpanCmd,
	}
	addSpanFlags(cmd)
	return cmd
}

func runSpanCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "success-streak", &spanSuccessStreak, fileCfg.Span.SuccessStreak)
	applyIntConfig(cmd, "exposure-ms", &spanExposureMs, fileCfg.Span.ExposureMs)
	applyInt64Config(cmd, "seed", &spanSeed, fileCfg.Span.Seed)
	if err := validateSpanFlags(spanSuccessStreak, spanExposureMs); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("span trainer needs an interactive terminal")
	}

	ctx := cmd.Context()
	return withLearner(ctx, func(st *store.Store, learner string) error {
		gen := generator.New(spanSeed)
		var session tui.Session
		if spanPool {
			pool, err := trainer.NewPoolSession(ctx, st, learner, gen)
			if err != nil {
				return err
			}
			session = pool
		} else {
			span, err := trainer.NewSpanSession(ctx, st, learner, gen, ladder.Config{SuccessStreakToGrow: spanSuccessStreak})
			if err != nil {
				return err
			}
			session = span
		}
		slog.Debug("starting span trainer", "learner", rootLearner, "pool", spanPool, "exposure_ms", spanExposureMs)
		model := tui.NewModel(session, time.Duration(spanExposureMs)*time.Millisecond, slog.Default())
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	})
}

func validateSpanFlags(streak, exposureMs int) error {
	if streak < 2 || streak > 10 {
		return fmt.Errorf("--success-streak must be between 2 and 10")
	}
	if exposureMs < minExposureMs || exposureMs > maxExposureMs {
		return fmt.Errorf("--exposure-ms must be between %d and %d", minExposureMs, maxExposureMs)
	}
	return nil
}

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <modality>",
		Short: "Record an outcome for a reader or fixation exercise",
		Long:  "Record an outcome score in [0, 1] for the modality's current parameters and print the next ones.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordCmd,
	}
	cmd.Flags().Float64Var(&recordScore, "score", 0, "observed score in [0, 1]")
	cmd.Flags().StringVar(&recordRating, "rating", rating.NameGlicko, "rating strategy (glicko, elo)")
	if err := cmd.MarkFlagRequired("score"); err != nil {
		panic(err)
	}
	return cmd
}

func lookupModality(name string) (adaptive.Modality, error) {
	m, ok := adaptive.Lookup(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return adaptive.Modality{}, fmt.Errorf("%w %q (available: %s)", errUnknownModality, name, strings.Join(adaptive.Names(), ", "))
	}
	return m, nil
}

// resolveStatsModality validates a stats filter and returns its canonical
// name. An empty name means no filter.
func resolveStatsModality(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", store.ModalitySpan, store.ModalityPool:
		return name, nil
	}
	m, err := lookupModality(name)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "rating", &recordRating, fileCfg.Engine.Rating)
	m, err := lookupModality(args[0])
	if err != nil {
		return err
	}
	if recordScore < 0 || recordScore > 1 {
		return fmt.Errorf("--score must be between 0 and 1")
	}
	rater, err := rating.ByName(recordRating)
	if err != nil {
		return err
	}
	engine := adaptive.NewEngine(adaptive.Config{Rater: rater})

	ctx := cmd.Context()
	return withLearner(ctx, func(st *store.Store, learner string) error {
		next, decision, err := trainer.RecordAdaptive(ctx, st, engine, learner, m, recordScore, time.Now())
		if err != nil {
			return err
		}
		slog.Debug("outcome recorded",
			"modality", m.Name,
			"expected", decision.Expected,
			"k", decision.K,
			"target", decision.Target,
			"selected", decision.Selected,
			"params", next.CurrentParams,
		)
		return printRecord(cmd.OutOrStdout(), m, next, decision)
	})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || !hasFlag(cmd, name) || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || !hasFlag(cmd, name) || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil || !hasFlag(cmd, name) || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func hasFlag(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Lookup(name) != nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tachy configuration
# Uncomment a value to enable it. CLI flags override config values.

[span]
# success-streak = %d     # Correct answers in a row needed to grow (2-10)
# exposure-ms = %d      # How long each stimulus is shown
# seed = 0                # Random seed (0 uses the clock)

[engine]
# rating = %q       # Rating strategy for record: glicko or elo
# learner = %q     # Learner name

[log]
# level = %q          # debug, info, warn or error
`,
		ladder.DefaultSuccessStreak,
		defaultExposureMs,
		rating.NameGlicko,
		defaultLearner,
		defaultLogLevel,
	)
}
