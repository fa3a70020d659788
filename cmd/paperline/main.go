package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paperline/paperline/internal/app"
	"github.com/paperline/paperline/internal/config"
	"github.com/paperline/paperline/internal/logger"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "paperline",
	Short: "Paperline - strategy backtesting and weekly target scoring",
	Long: `Paperline simulates trading strategies over historical bars and
scores each run against weekly performance targets.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "paperline.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// loadApp builds the application from the configured file, honoring
// the --debug override.
func loadApp() (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Logging.Mode = "development"
		cfg.Logging.Level = "debug"
	}
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
