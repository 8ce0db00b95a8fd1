// Package main provides the insight command-line interface.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/engine"
	"github.com/spektr-org/insight/explain"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/planner"
	"github.com/spektr-org/insight/resolve"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Deterministic question answering over tabular data",
	Long: `Ask plain-language questions of a CSV or Parquet file.

insight resolves column references, classifies the question with ordered
keyword rules, builds a structured analysis plan, and executes it locally.
No AI service is called at any point.`,
}

var askCmd = &cobra.Command{
	Use:   "ask <dataset>",
	Short: "Interactive question loop over a dataset",
	Long: `Load a dataset, print its schema, then read questions until exit.

Example:
  insight ask sales.csv
  insight ask events.parquet --charts-dir ./charts --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var queryCmd = &cobra.Command{
	Use:   "query <dataset>",
	Short: "Answer a single question and print the response as JSON",
	Long: `One-shot mode for scripting.

Example:
  insight query sales.csv -q "total revenue by region"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var profileCmd = &cobra.Command{
	Use:   "profile <dataset>",
	Short: "Print the dataset schema profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("vocab", "", "YAML file overriding the resolver vocabulary")

	askCmd.Flags().String("charts-dir", ".", "directory for saved chart specs")
	askCmd.Flags().Bool("clean", false, "clean the dataset before answering (normalize names, drop empty rows)")

	queryCmd.Flags().StringP("question", "q", "", "question to answer (required)")
	queryCmd.Flags().String("charts-dir", ".", "directory for saved chart specs")
	queryCmd.Flags().Bool("clean", false, "clean the dataset before answering")

	profileCmd.Flags().Bool("clean", false, "clean the dataset and print the audit trail")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("INSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(askCmd, queryCmd, profileCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("insight\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ─── setup ─────────────────────────────────────────────────────────────────

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadTable(path string, logger zerolog.Logger) (*dataset.Table, *dataset.Profile, error) {
	t, profile, err := dataset.Load(context.Background(), path)
	if err != nil {
		return nil, nil, err
	}
	if viper.GetBool("clean") {
		cleaned, report := dataset.Clean(t)
		for _, line := range report.Audit {
			logger.Info().Msg(line)
		}
		t = cleaned
		if profile, err = dataset.BuildProfile(t); err != nil {
			return nil, nil, err
		}
	}
	return t, profile, nil
}

func newPipeline(logger zerolog.Logger, chartsDir string) (*engine.Pipeline, error) {
	vocab := resolve.DefaultVocabulary()
	if path := viper.GetString("vocab"); path != "" {
		var err error
		if vocab, err = resolve.LoadVocabulary(path); err != nil {
			return nil, fmt.Errorf("failed to load vocabulary: %w", err)
		}
	}
	classifier := planner.New(resolve.NewResolver(vocab), logger)
	return engine.NewPipeline(classifier, engine.NewExecutor(logger), logger,
		engine.WithExplainer(explain.New()),
		engine.WithRenderer(engine.NewSpecRenderer(chartsDir)),
	), nil
}

// ─── ask ───────────────────────────────────────────────────────────────────

func runAsk(cmd *cobra.Command, args []string) error {
	// Bind here, not in init: the commands share flag names.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	logger := newLogger()

	t, profile, err := loadTable(args[0], logger)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(logger, viper.GetString("charts-dir"))
	if err != nil {
		return err
	}

	printSchema(profile)
	fmt.Println("\nAsk a question (exit/quit/q to stop):")

	memory := engine.NewMemory()
	session := memory.NewSession()
	defer memory.Drop(session)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "exit" || question == "quit" || question == "q" {
			break
		}

		resp := pipeline.Run(question, t, previousFor(memory, session, question))
		printResponse(resp)
		memory.Record(session, resp)
	}
	return scanner.Err()
}

// previousFor threads the session's last plan into planning only when the
// question refers back to an earlier turn.
func previousFor(m *engine.Memory, session, question string) *plan.Plan {
	if !planner.IsFollowUp(question) {
		return nil
	}
	return m.Previous(session)
}

func printSchema(p *dataset.Profile) {
	fmt.Printf("Loaded %d rows, %d columns:\n", p.RowCount, len(p.Columns))
	for _, name := range p.Columns {
		fmt.Printf("  %-20s %-12s missing %.2f%%  unique %d\n",
			name, p.Dtypes[name], p.MissingPct[name], p.UniqueCounts[name])
	}
}

func printResponse(resp *engine.Response) {
	if resp.Plan != nil {
		fmt.Printf("\nPlan: %s (confidence %.2f)\n", resp.Plan, resp.Confidence)
	}
	if resp.Error != "" {
		fmt.Printf("Error: %s\n", resp.Error)
		return
	}
	if resp.Warning != "" {
		fmt.Printf("Warning: %s\n", resp.Warning)
	}
	if out := resp.Outcome; out != nil {
		switch {
		case out.Table != nil:
			fmt.Println(engine.FormatTable(out.Table))
		case out.Quality != nil:
			fmt.Println(engine.FormatQuality(out.Quality))
		case out.Chart != nil:
			fmt.Println(engine.FormatChart(out.Chart))
		}
	}
	if resp.ChartPath != "" {
		fmt.Printf("Chart saved to %s\n", resp.ChartPath)
	}
	if resp.Explanation != "" {
		fmt.Println(resp.Explanation)
	}
	if len(resp.Suggestions) > 0 {
		fmt.Println("You could ask next:")
		for _, s := range resp.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}

// ─── query ─────────────────────────────────────────────────────────────────

func runQuery(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	question := viper.GetString("question")
	if question == "" {
		return fmt.Errorf("--question is required")
	}

	logger := newLogger()
	t, _, err := loadTable(args[0], logger)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(logger, viper.GetString("charts-dir"))
	if err != nil {
		return err
	}

	resp := pipeline.Run(question, t, nil)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// ─── profile ───────────────────────────────────────────────────────────────

func runProfile(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	logger := newLogger()
	_, profile, err := loadTable(args[0], logger)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}
