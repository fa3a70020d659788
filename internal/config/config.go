package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/paperline/paperline/internal/core"
)

type Config struct {
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Execution  ExecutionConfig           `mapstructure:"execution"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Targets    TargetsConfig             `mapstructure:"targets"`
	Storage    StorageConfig             `mapstructure:"storage"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

type BacktestConfig struct {
	InitialCapital float64  `mapstructure:"initial_capital"`
	Universe       []string `mapstructure:"universe"`
	Start          string   `mapstructure:"start"` // YYYY-MM-DD
	End            string   `mapstructure:"end"`
}

// ExecutionConfig selects the cost and sizing models applied to every
// simulated fill.
type ExecutionConfig struct {
	Slippage SlippageConfig `mapstructure:"slippage"`
	Fees     FeesConfig     `mapstructure:"fees"`
	Sizer    SizerConfig    `mapstructure:"sizer"`
}

type SlippageConfig struct {
	Model        string  `mapstructure:"model"` // "fixed" or "volume"
	Bps          float64 `mapstructure:"bps"`
	ImpactFactor float64 `mapstructure:"impact_factor"`
}

type FeesConfig struct {
	Model         string  `mapstructure:"model"` // "simple" or "indian_equity"
	CommissionBps float64 `mapstructure:"commission_bps"`
}

type SizerConfig struct {
	Model            string  `mapstructure:"model"` // "fixed", "volatility" or "kelly"
	MaxPositionPct   float64 `mapstructure:"max_position_pct"`
	TargetVolatility float64 `mapstructure:"target_volatility"`
	KellyFraction    float64 `mapstructure:"kelly_fraction"`
}

type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

// TargetsConfig holds the weekly badge thresholds, expressed in
// percent to match how operators think about them. Drawdown values
// are negative.
type TargetsConfig struct {
	WeeklyReturnPct float64 `mapstructure:"weekly_return_pct"`
	MaxDrawdownPct  float64 `mapstructure:"max_drawdown_pct"`
	P5WeeklyDDPct   float64 `mapstructure:"p5_weekly_dd_pct"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "sqlite", "parquet" or "memory"
	DSN        string `mapstructure:"dsn"`     // sqlite database path
	ParquetDir string `mapstructure:"parquet_dir"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"` // "development" or "production"
}

// Load reads configuration from file with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} placeholders in string values.
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: 1000000,
		},
		Execution: ExecutionConfig{
			Slippage: SlippageConfig{Model: "fixed", Bps: 5},
			Fees:     FeesConfig{Model: "simple", CommissionBps: 3},
			Sizer:    SizerConfig{Model: "fixed", MaxPositionPct: 0.1},
		},
		Targets: TargetsConfig{
			WeeklyReturnPct: 0.5,
			MaxDrawdownPct:  -10,
			P5WeeklyDDPct:   -3,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			DSN:     "paperline.db",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "archive",
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "production",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}

	switch c.Execution.Slippage.Model {
	case "fixed", "volume":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown slippage model %q", c.Execution.Slippage.Model))
	}
	switch c.Execution.Fees.Model {
	case "simple", "indian_equity":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown fee model %q", c.Execution.Fees.Model))
	}
	switch c.Execution.Sizer.Model {
	case "fixed", "volatility", "kelly":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown sizer model %q", c.Execution.Sizer.Model))
	}
	if c.Execution.Sizer.MaxPositionPct <= 0 || c.Execution.Sizer.MaxPositionPct > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_position_pct must be in (0, 1], got %f", c.Execution.Sizer.MaxPositionPct))
	}

	if c.Targets.MaxDrawdownPct > 0 || c.Targets.P5WeeklyDDPct > 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("drawdown thresholds must be zero or negative"))
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage dsn required for sqlite backend"))
		}
	case "parquet":
		if c.Storage.ParquetDir == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("parquet_dir required for parquet backend"))
		}
	case "memory":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Archive.Enabled && c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive type is s3"))
	}
	return nil
}
