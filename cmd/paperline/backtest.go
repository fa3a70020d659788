package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperline/paperline/internal/engine"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest for a strategy",
	Long:  "Run the named strategy over the configured universe and date range, persist the result and print the weekly scorecard.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, log, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	defer log.Sync()

	strategyName := args[0]
	result, evaluation, err := a.RunBacktest(cmd.Context(), strategyName)
	if err != nil {
		if result != nil && result.State == engine.StateFailed {
			fmt.Printf("Run %s FAILED: %s\n", result.RunID, result.Error)
		}
		return err
	}

	fmt.Printf("Run:        %s\n", result.RunID)
	fmt.Printf("Strategy:   %s\n", result.Generator)
	fmt.Printf("Universe:   %s\n", strings.Join(result.Universe, ", "))
	fmt.Printf("Period:     %s to %s\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Printf("Capital:    %s -> %s\n", result.InitialCapital, result.FinalEquity)
	fmt.Printf("Orders:     %d (%d signals)\n", len(result.Orders), result.SignalCount)

	if m := result.Metrics; m != nil {
		fmt.Println()
		fmt.Printf("Total return:   %.2f%%\n", m.TotalReturn*100)
		fmt.Printf("Annual return:  %.2f%%\n", m.AnnualReturn*100)
		if m.SharpeRatio != nil {
			fmt.Printf("Sharpe:         %.2f\n", *m.SharpeRatio)
		}
		if m.SortinoRatio != nil {
			fmt.Printf("Sortino:        %.2f\n", *m.SortinoRatio)
		}
		fmt.Printf("Max drawdown:   %.2f%% (%d days)\n",
			m.MaxDrawdown*100, m.MaxDrawdownDurationDays)
		fmt.Printf("Trades:         %d (win rate %.0f%%)\n", m.TotalTrades, m.WinRate*100)
		fmt.Printf("Costs:          commission %s, slippage %s\n",
			m.TotalCommission.StringFixed(2), m.TotalSlippage.StringFixed(2))
	}

	if evaluation != nil {
		fmt.Println()
		fmt.Printf("Badge:          %s\n", strings.ToUpper(string(evaluation.Badge)))
		fmt.Printf("Weekly mean:    %.3f%% (target %.3f%%)\n",
			evaluation.MeanReturn*100, evaluation.TargetReturn*100)
		fmt.Printf("Weekly p5/p95:  %.3f%% / %.3f%%\n",
			evaluation.P5Return*100, evaluation.P95Return*100)
		fmt.Printf("Weekly max DD:  %.2f%%\n", evaluation.MaxDrawdown*100)
	}
	return nil
}
