package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var evaluateLimit int

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [run-id]",
	Short: "Re-score a stored run against the weekly targets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().IntVar(&evaluateLimit, "limit", 20, "number of runs to list when no run-id is given")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, log, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	defer log.Sync()

	if len(args) == 0 {
		summaries, err := a.ListRuns(cmd.Context(), evaluateLimit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No stored runs.")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%s  %-12s %-10s %s\n",
				s.StartedAt.Format("2006-01-02 15:04"), s.Generator, s.State, s.RunID)
		}
		return nil
	}

	evaluation, err := a.EvaluateRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Badge:          %s\n", strings.ToUpper(string(evaluation.Badge)))
	fmt.Printf("Weeks:          %d\n", evaluation.TotalWeeks)
	fmt.Printf("Weekly mean:    %.3f%% (target %.3f%%)\n",
		evaluation.MeanReturn*100, evaluation.TargetReturn*100)
	fmt.Printf("Weekly median:  %.3f%%\n", evaluation.MedianReturn*100)
	fmt.Printf("Weekly p5/p95:  %.3f%% / %.3f%%\n",
		evaluation.P5Return*100, evaluation.P95Return*100)
	fmt.Printf("Win rate:       %.0f%%\n", evaluation.WinRate*100)
	fmt.Printf("Payoff ratio:   %.2f\n", evaluation.PayoffRatio)
	fmt.Printf("Max drawdown:   %.2f%% (max %d weeks underwater)\n",
		evaluation.MaxDrawdown*100, evaluation.MaxDrawdownDurationWeeks)
	fmt.Printf("Costs:          turnover %s, commission %s, slippage %s\n",
		evaluation.Turnover.StringFixed(2),
		evaluation.TotalCommission.StringFixed(2),
		evaluation.TotalSlippage.StringFixed(2))
	return nil
}
