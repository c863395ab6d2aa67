// Package main provides the CLI entrypoint for hancards.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/hancards/internal/config"
	"github.com/verte-zerg/hancards/internal/generator"
	"github.com/verte-zerg/hancards/internal/logging"
	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/remind"
	"github.com/verte-zerg/hancards/internal/review"
	"github.com/verte-zerg/hancards/internal/stats"
	"github.com/verte-zerg/hancards/internal/statsui"
	"github.com/verte-zerg/hancards/internal/store"
	"github.com/verte-zerg/hancards/internal/tui"
	"github.com/verte-zerg/hancards/internal/vocab"
)

const (
	defaultCards      = 10
	defaultLevel      = 1
	defaultHardFactor = 1.0
	defaultStatsDays  = 14
)

var (
	reviewCards      int
	reviewLevel      int
	reviewContextual bool
	reviewFocusHard  bool
	reviewHardFactor float64
	reviewDue        bool

	generateJSON bool

	statsPlain bool
	statsDays  int

	resetAll bool

	vocabLevel int
	vocabSheet string
	vocabForce bool

	remindEvery string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hancards",
		Short:         "Korean flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadEnv(".env")
		},
		RunE: runReviewCmd,
	}
	addReviewFlags(rootCmd)

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newVocabCmd())
	rootCmd.AddCommand(newRemindCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&reviewCards, "cards", defaultCards, "cards per batch")
	cmd.Flags().IntVar(&reviewLevel, "level", defaultLevel, "highest vocabulary level to draw from (1-5)")
	cmd.Flags().BoolVar(&reviewContextual, "contextual", false, "use richer example sentences")
	cmd.Flags().BoolVar(&reviewFocusHard, "focus-hard", false, "draw difficult words more often")
	cmd.Flags().Float64Var(&reviewHardFactor, "hard-factor", defaultHardFactor, "extra weight per difficulty step with --focus-hard")
	cmd.Flags().BoolVar(&reviewDue, "due", false, "review stored cards that are due instead of a new batch")
}

func resolveReviewConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.ReviewConfig, error) {
	applyIntConfig(cmd, "cards", &reviewCards, fileCfg.Review.Cards)
	applyIntConfig(cmd, "level", &reviewLevel, fileCfg.Review.Level)
	applyBoolConfig(cmd, "contextual", &reviewContextual, fileCfg.Review.Contextual)
	applyBoolConfig(cmd, "focus-hard", &reviewFocusHard, fileCfg.Review.FocusHard)
	applyFloatConfig(cmd, "hard-factor", &reviewHardFactor, fileCfg.Review.HardFactor)
	applyBoolConfig(cmd, "due", &reviewDue, fileCfg.Review.Due)

	cfg := model.ReviewConfig{
		Cards:      reviewCards,
		Level:      reviewLevel,
		Contextual: reviewContextual,
		FocusHard:  reviewFocusHard,
		HardFactor: reviewHardFactor,
		Due:        reviewDue,
	}
	if err := validateReviewConfig(cfg); err != nil {
		return model.ReviewConfig{}, err
	}
	return cfg, nil
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveReviewConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := fileLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	entries, err := loadVocab()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	tracker := progress.NewTracker(st)
	reviewer := review.New(st, tracker, review.WithLogger(logger))
	initial, err := tracker.Get(context.Background())
	if err != nil {
		return err
	}
	logger.Info("review session started",
		"session", reviewer.SessionID(),
		"cards", cfg.Cards,
		"level", cfg.Level,
		"due", cfg.Due,
		"focus_hard", cfg.FocusHard)

	deck := buildDeck(cfg, entries, generator.New(), st, reviewer)
	m := tui.NewModel(reviewer, deck, initial, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

type cardStates interface {
	CardStates(ctx context.Context) (map[string]model.CardState, error)
}

type dueLister interface {
	DueCards(ctx context.Context, limit int) ([]model.Flashcard, error)
}

// buildDeck returns the batch source for a review session.
func buildDeck(cfg model.ReviewConfig, entries []vocab.Entry, gen *generator.Generator, states cardStates, due dueLister) tui.Deck {
	opts := generator.Options{Contextual: cfg.Contextual}
	return func(ctx context.Context) ([]model.Flashcard, error) {
		if cfg.Due {
			return due.DueCards(ctx, cfg.Cards)
		}
		stored, err := states.CardStates(ctx)
		if err != nil {
			return nil, err
		}
		var cards []model.Flashcard
		if cfg.FocusHard {
			difficulties := make(map[string]float64, len(stored))
			for k, st := range stored {
				difficulties[k] = st.Difficulty
			}
			cards = gen.GenerateWeighted(entries, cfg.Cards, cfg.Level, difficulties, cfg.HardFactor, opts)
		} else {
			cards = gen.Generate(entries, cfg.Cards, cfg.Level, opts)
		}
		return generator.Merge(cards, stored), nil
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated batch of cards",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	addReviewFlags(cmd)
	cmd.Flags().BoolVar(&generateJSON, "json", false, "print cards as JSON")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	stderrLogger(fileCfg)
	cfg, err := resolveReviewConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	entries, err := loadVocab()
	if err != nil {
		return err
	}
	cards := generator.New().Generate(entries, cfg.Cards, cfg.Level, generator.Options{Contextual: cfg.Contextual})
	slog.Debug("generated cards", "count", len(cards), "level", cfg.Level)
	return writeCards(cmd, cards, generateJSON)
}

func writeCards(cmd *cobra.Command, cards []model.Flashcard, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cards); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := stats.RenderCards(out, cards); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the report instead of opening the viewer")
	cmd.Flags().IntVar(&statsDays, "days", defaultStatsDays, "activity window in days")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "days", &statsDays, fileCfg.Stats.Days)
	if statsDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	cfg := model.StatsConfig{Days: statsDays}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		stderrLogger(fileCfg)
		report, err := stats.BuildReport(context.Background(), st, cfg, time.Now(), time.Local)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.RenderReport(cmd.OutOrStdout(), report)
	}

	_, closeLog, err := fileLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	load := func(ctx context.Context, cfg model.StatsConfig, now time.Time) (stats.Report, error) {
		return stats.BuildReport(ctx, st, cfg, now, time.Local)
	}
	program := tea.NewProgram(statsui.NewModel(load, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetAll, "all", false, "also clear card schedules and review history")
	return cmd
}

func runResetCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := stderrLogger(fileCfg)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if resetAll {
		if err := st.ResetAll(ctx); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		logger.Info("progress, card schedules and review history cleared")
		logErrln("Progress, card schedules and review history reset.")
		return nil
	}
	if _, err := progress.NewTracker(st).Reset(ctx); err != nil {
		return err
	}
	logger.Info("progress reset")
	logErrln("Progress reset.")
	return nil
}

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print a reminder whenever cards are due",
		Args:  cobra.NoArgs,
		RunE:  runRemindCmd,
	}
	cmd.Flags().StringVar(&remindEvery, "every", remind.DefaultEvery.String(), "check interval")
	return cmd
}

func resolveRemindOptions(cmd *cobra.Command, fileCfg config.FileConfig) (remind.Options, error) {
	applyStringConfig(cmd, "every", &remindEvery, fileCfg.Remind.Every)
	every, err := time.ParseDuration(remindEvery)
	if err != nil {
		return remind.Options{}, fmt.Errorf("invalid --every value: %w", err)
	}
	opts := remind.DefaultOptions()
	opts.Every = every
	if fileCfg.Remind.StartHour != nil {
		opts.StartHour = *fileCfg.Remind.StartHour
	}
	if fileCfg.Remind.EndHour != nil {
		opts.EndHour = *fileCfg.Remind.EndHour
	}
	if err := opts.Validate(); err != nil {
		return remind.Options{}, err
	}
	return opts, nil
}

func runRemindCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := stderrLogger(fileCfg)
	opts, err := resolveRemindOptions(cmd, fileCfg)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := cmd.OutOrStdout()
	notify := remind.NotifierFunc(func(_ context.Context, due int, at time.Time) error {
		_, err := fmt.Fprintf(out, "[%s] %d cards due for review. Run: hancards --due\n", at.Format("15:04"), due)
		return err
	})
	r, err := remind.New(st, notify, opts, remind.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("reminders running", "every", opts.Every, "start_hour", opts.StartHour, "end_hour", opts.EndHour)
	return r.Run(ctx)
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
	if _, err := config.EnsureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func loadVocab() ([]vocab.Entry, error) {
	path := config.DefaultVocabPath()
	entries, fromFile, err := vocab.LoadOrBuiltin(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if fromFile {
		slog.Debug("loaded vocabulary", "path", path, "words", len(entries))
	}
	return entries, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func logOptions(fileCfg config.FileConfig) logging.Options {
	var opts logging.Options
	if fileCfg.Log.Level != nil {
		opts.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.Format != nil {
		opts.Format = *fileCfg.Log.Format
	}
	if level, ok := config.LogLevelOverride(); ok {
		opts.Level = level
	}
	return opts
}

func stderrLogger(fileCfg config.FileConfig) *slog.Logger {
	return logging.New(logOptions(fileCfg), os.Stderr)
}

// fileLogger keeps log output off the terminal while a TUI owns it.
func fileLogger(fileCfg config.FileConfig) (*slog.Logger, func(), error) {
	logger, f, err := logging.OpenFile(logOptions(fileCfg), config.DefaultLogPath())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = f.Close() }, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateReviewConfig(cfg model.ReviewConfig) error {
	if cfg.Cards <= 0 {
		return fmt.Errorf("--cards must be > 0")
	}
	if cfg.Level < model.MinLevel || cfg.Level > model.MaxLevel {
		return fmt.Errorf("--level must be between %d and %d", model.MinLevel, model.MaxLevel)
	}
	if cfg.HardFactor < 0 {
		return fmt.Errorf("--hard-factor must be >= 0")
	}
	if cfg.Due && cfg.FocusHard {
		return errors.New("--due and --focus-hard cannot be combined")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
