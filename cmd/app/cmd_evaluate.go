package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"FxPulse/internal/di"
	"FxPulse/internal/domain/models"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/util"

	"github.com/spf13/cobra"
)

var evaluateAt string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one evaluation pass and print it as JSON",
	Long: `Run a single evaluation pass over the configured instruments and
print the pass to stdout as JSON.

Example usage:
  fxpulse evaluate
  fxpulse evaluate --at 2024-03-05T21:00:00Z`,
	RunE: runEvaluate,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the daily-close report table",
	Long: `Run a single evaluation pass and print one row per pair with the
score, status, news focus, target and the London session recommendation.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(evaluateCmd, reportCmd)
	for _, c := range []*cobra.Command{evaluateCmd, reportCmd} {
		c.Flags().StringVar(&evaluateAt, "at", "", "evaluation time (RFC3339, YYYY-MM-DD or unix seconds), default now")
	}
}

func evaluateOnce(ctx context.Context) (*models.EvaluationPass, *time.Location, error) {
	at := time.Now()
	if evaluateAt != "" {
		t, ok := util.ParseTime(evaluateAt)
		if !ok {
			return nil, nil, fmt.Errorf("invalid --at %q", evaluateAt)
		}
		at = t
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Evaluation.Location()
	if err != nil {
		return nil, nil, err
	}

	eval, cleanup, err := di.InitializeEvaluator(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator initialization failed: %w", err)
	}
	defer cleanup()

	evaluate := eval.Evaluate
	if evaluateAt != "" {
		evaluate = eval.EvaluateAsOf
	}
	pass, err := evaluate(ctx, at)
	if err != nil {
		return nil, nil, err
	}
	return pass, loc, nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	pass, _, err := evaluateOnce(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pass)
}

func runReport(cmd *cobra.Command, _ []string) error {
	pass, loc, err := evaluateOnce(cmd.Context())
	if err != nil {
		return err
	}
	report := usecase.BuildReport(pass, loc)

	fmt.Printf("Daily close %s\n\n", report.Date.Format(time.DateOnly))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tSCORE\tSTATUS\tNEWS\tTARGET\tLONDON")
	for _, r := range report.Rows {
		status := string(r.Status)
		if r.StreamDown {
			status += " (stream down)"
		}
		london := "-"
		if r.EnableForLondon {
			london = "enable"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Pair, r.Score, status, r.NewsFocus, r.Target, london)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if report.Pick != nil {
		fmt.Printf("\nPick: %s (%d, high probability: %t)\n",
			report.Pick.Symbol, report.Pick.Result.Score, report.Pick.HighProbability)
	}
	return nil
}
