// Package main provides the CLI entrypoint for zbalance.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/config"
	"github.com/verte-zerg/zbalance/internal/gamedata"
	"github.com/verte-zerg/zbalance/internal/logger"
	"github.com/verte-zerg/zbalance/internal/model"
	"github.com/verte-zerg/zbalance/internal/report"
	"github.com/verte-zerg/zbalance/internal/reportui"
	"github.com/verte-zerg/zbalance/internal/store"
)

const (
	defaultGameDir     = "public/config"
	defaultDetails     = string(model.DetailsAuto)
	defaultHistoryLast = 10
)

var (
	analyzeGameDir         string
	analyzeBulletThreshold float64
	analyzeDetails         string
	analyzeChapter         string
	analyzeSave            bool
	analyzeCurves          bool

	historyLast    int
	historySameDir bool
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	if cerr := logger.Close(); cerr != nil {
		logErrf("failed to close log file: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "zbalance",
		Short:             "Wave balance analyzer for Zomboid Assault",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogging,
		RunE:              runReportCmd,
	}

	rootCmd.PersistentFlags().StringVar(&analyzeGameDir, "game-dir", defaultGameDir, "directory holding entities/ and chapters/")
	rootCmd.PersistentFlags().Float64Var(&analyzeBulletThreshold, "bullet-threshold", balance.DefaultBulletThreshold, "bullet ratio warning threshold")
	rootCmd.PersistentFlags().StringVar(&analyzeChapter, "chapter", "", "only analyze the chapter with this id")
	rootCmd.Flags().StringVar(&analyzeDetails, "details", defaultDetails, "when to print wave traces: auto, always, never")
	rootCmd.Flags().BoolVar(&analyzeSave, "save", false, "record the run in the history database")
	rootCmd.Flags().BoolVar(&analyzeCurves, "curves", false, "print per-chapter difficulty sparklines")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func initLogging(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(fileCfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadAnalyzeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "game-dir", &analyzeGameDir, fileCfg.Analyze.GameDir)
	applyFloatConfig(cmd, "bullet-threshold", &analyzeBulletThreshold, fileCfg.Analyze.BulletThreshold)
	applyStringConfig(cmd, "details", &analyzeDetails, fileCfg.Analyze.Details)
	applyBoolConfig(cmd, "save", &analyzeSave, fileCfg.Analyze.Save)

	cfg := model.Config{
		GameDir:         analyzeGameDir,
		BulletThreshold: analyzeBulletThreshold,
		Details:         model.Details(strings.ToLower(strings.TrimSpace(analyzeDetails))),
		Chapter:         strings.TrimSpace(analyzeChapter),
		Save:            analyzeSave,
		Curves:          analyzeCurves,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAnalyzeConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := analyze(ctx, cfg)
	if err != nil {
		return err
	}
	summary := balance.Summarize(results, cfg.BulletThreshold)

	out := cmd.OutOrStdout()
	if err := report.Render(out, results, report.Options{Details: cfg.Details, BulletThreshold: cfg.BulletThreshold}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.Curves {
		if err := report.RenderCurves(out, results, report.CurveOptions{BulletThreshold: cfg.BulletThreshold}); err != nil {
			return fmt.Errorf("failed to write curves: %w", err)
		}
	}
	if err := report.RenderSummary(out, summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if cfg.Save {
		id, err := saveRun(ctx, cfg, results, summary)
		if err != nil {
			return err
		}
		logErrf("Saved run %d\n", id)
	}
	return nil
}

func analyze(ctx context.Context, cfg model.Config) ([]balance.ChapterResult, error) {
	gd, err := gamedata.Load(cfg.GameDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}
	chapters, err := selectChapters(gd.Chapters, cfg.Chapter)
	if err != nil {
		return nil, err
	}
	results, err := balance.AnalyzeChapters(ctx, gd.Tables, chapters)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze chapters: %w", err)
	}
	logIssues(results)
	return results, nil
}

func selectChapters(chapters []balance.Chapter, id string) ([]balance.Chapter, error) {
	if id == "" {
		return chapters, nil
	}
	for _, ch := range chapters {
		if ch.ID == id {
			return []balance.Chapter{ch}, nil
		}
	}
	ids := make([]string, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
	}
	return nil, fmt.Errorf("unknown chapter %q (available: %s)", id, strings.Join(ids, ", "))
}

func logIssues(results []balance.ChapterResult) {
	for _, ch := range results {
		for _, w := range ch.Waves {
			for _, issue := range w.Issues {
				logger.Warning("unresolved game data reference",
					"chapter", ch.ChapterID,
					"wave", w.WaveID,
					"kind", string(issue.Kind),
					"ref", issue.Ref,
				)
			}
		}
	}
}

func saveRun(ctx context.Context, cfg model.Config, results []balance.ChapterResult, summary balance.Summary) (int64, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return 0, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	run, rows := store.RunFromResults(absPath(cfg.GameDir), results, summary, time.Now().UTC())
	id, err := st.InsertRun(ctx, run, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved", "id", id, "waves", run.Waves)
	return id, nil
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the balance report interactively",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAnalyzeConfig(cmd)
	if err != nil {
		return err
	}
	results, err := analyze(context.Background(), cfg)
	if err != nil {
		return err
	}
	m := reportui.NewModel(results, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved runs or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	cmd.Flags().BoolVar(&historySameDir, "same-dir", false, "only list runs of the current --game-dir")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		return showRun(ctx, out, st, id)
	}

	hcfg := model.HistoryConfig{Last: historyLast}
	if historySameDir {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyStringConfig(cmd, "game-dir", &analyzeGameDir, fileCfg.Analyze.GameDir)
		hcfg.GameDir = absPath(analyzeGameDir)
	}
	runs, err := st.ListRuns(ctx, hcfg)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderRuns(out, runs, time.Now()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func showRun(ctx context.Context, out io.Writer, st *store.Store, id int64) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return err
	}
	waves, err := st.ListWaveRows(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load wave results: %w", err)
	}
	if err := report.RenderWaveRows(out, run, waves); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := logger.DefaultConfig()
	return fmt.Sprintf(`# zbalance configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# game-dir = %q           # Directory holding entities/ and chapters/
# bullet-threshold = %.1f       # Bullet ratio warning threshold
# details = %q               # When to print wave traces: auto, always, never
# save = false                 # Record every run in the history database

[logging]
# level = %q                 # DEBUG, INFO, WARN, ERROR (LOG_LEVEL env wins)
# console-format = %q        # text or json
# file = false                 # Also write a rotated log file
# file-path = %q
# file-format = %q           # text or json
# file-max-size-mb = %d
# file-max-backups = %d
# file-max-age-days = %d
`,
		defaultGameDir,
		balance.DefaultBulletThreshold,
		defaultDetails,
		defaults.Level,
		defaults.ConsoleFormat,
		config.DefaultLogPath(),
		defaults.FileFormat,
		defaults.FileMaxSizeMB,
		defaults.FileMaxBackups,
		defaults.FileMaxAgeDays,
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.GameDir) == "" {
		return fmt.Errorf("--game-dir must not be empty")
	}
	if cfg.BulletThreshold <= 0 {
		return fmt.Errorf("--bullet-threshold must be > 0")
	}
	switch cfg.Details {
	case model.DetailsAuto, model.DetailsAlways, model.DetailsNever:
	default:
		return fmt.Errorf("--details must be one of auto, always, never")
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
