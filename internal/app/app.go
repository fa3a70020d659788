package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paperline/paperline/internal/archive"
	"github.com/paperline/paperline/internal/config"
	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/engine"
	"github.com/paperline/paperline/internal/execution"
	"github.com/paperline/paperline/internal/metrics"
	"github.com/paperline/paperline/internal/store"
	"github.com/paperline/paperline/internal/strategy"
	"github.com/paperline/paperline/internal/strategy/ma_breakout"
	"github.com/paperline/paperline/internal/strategy/pair_spread"
	"github.com/paperline/paperline/internal/strategy/vwap_revert"
	"github.com/paperline/paperline/internal/weekly"
)

const dateLayout = "2006-01-02"

// App wires the engine, stores, evaluator and archive together from
// configuration and drives complete backtest runs.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Registry
	bars      store.BarStore
	runs      store.RunStore
	archiver  *archive.Archiver
	registry  *strategy.Registry
	evaluator *weekly.Evaluator

	closer func() error
}

// New builds the application from validated configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRegistry(),
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.bars, a.runs, a.closer = s, s, s.Close
	case "parquet":
		// Parquet holds bars only; runs go to a sqlite db next to it.
		a.bars = store.NewParquetBarStore(cfg.Storage.ParquetDir)
		s, err := store.NewSQLiteStore(cfg.Storage.ParquetDir + "/runs.db")
		if err != nil {
			return nil, err
		}
		a.runs, a.closer = s, s.Close
	case "memory":
		m := store.NewMemoryStore()
		a.bars, a.runs = m, m
	}

	if cfg.Archive.Enabled {
		backend, err := buildArchiveBackend(cfg.Archive)
		if err != nil {
			return nil, err
		}
		a.archiver = archive.NewArchiver(backend)
	}

	a.registry = strategy.NewRegistry(logger)
	a.registry.Register(vwap_revert.New(20, 2.0, 0.5, 1.5))
	a.registry.Register(ma_breakout.New(10, 30, 20, 14, 1.5, 1.0))
	a.registry.Register(pair_spread.New(40, 2.0, 0.5, 0.95))
	for name, sc := range cfg.Strategies {
		gen, ok := a.registry.Get(name)
		if !ok {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown strategy %q", name))
		}
		if err := gen.Init(strategy.Config{Enabled: sc.Enabled, Params: sc.Params}); err != nil {
			return nil, err
		}
	}

	// Thresholds arrive in percent.
	a.evaluator = weekly.NewEvaluator(weekly.Thresholds{
		TargetReturn:  cfg.Targets.WeeklyReturnPct / 100,
		MaxDrawdown:   cfg.Targets.MaxDrawdownPct / 100,
		DrawdownFloor: cfg.Targets.P5WeeklyDDPct / 100,
	})
	return a, nil
}

func buildArchiveBackend(cfg config.ArchiveConfig) (archive.Backend, error) {
	switch cfg.Type {
	case "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}

func (a *App) buildSlippage() execution.SlippageModel {
	sc := a.cfg.Execution.Slippage
	if sc.Model == "volume" {
		return execution.NewVolumeSlippageModel(sc.Bps, sc.ImpactFactor)
	}
	return execution.NewFixedSlippageModel(sc.Bps)
}

func (a *App) buildFees() execution.FeeModel {
	if a.cfg.Execution.Fees.Model == "indian_equity" {
		return execution.NewIndianEquityFeeModel()
	}
	return execution.NewSimpleFeeModel(a.cfg.Execution.Fees.CommissionBps)
}

func (a *App) buildSizer() execution.RiskSizer {
	sc := a.cfg.Execution.Sizer
	switch sc.Model {
	case "volatility":
		return execution.NewVolatilityRiskSizer(sc.TargetVolatility, sc.MaxPositionPct)
	case "kelly":
		return execution.NewKellyRiskSizer(sc.KellyFraction, sc.MaxPositionPct)
	default:
		return execution.NewFixedRiskSizer(sc.MaxPositionPct)
	}
}

// Stores exposes the bar store, used by the seed command.
func (a *App) Stores() (store.BarStore, store.RunStore) {
	return a.bars, a.runs
}

// Generators lists the registered strategy names.
func (a *App) Generators() []string {
	return a.registry.Names()
}

// RunBacktest executes one full backtest for the named strategy,
// persists the result, evaluates the weekly series and archives the
// bundle. The stored result is kept even when the run fails.
func (a *App) RunBacktest(ctx context.Context, strategyName string) (*engine.Result, *weekly.Evaluation, error) {
	gen, ok := a.registry.Get(strategyName)
	if !ok {
		return nil, nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown strategy %q", strategyName))
	}

	start, err := time.Parse(dateLayout, a.cfg.Backtest.Start)
	if err != nil {
		return nil, nil, core.WrapError(core.ErrInvalidDateRange,
			fmt.Errorf("parsing start date: %w", err))
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if a.cfg.Backtest.End != "" {
		if end, err = time.Parse(dateLayout, a.cfg.Backtest.End); err != nil {
			return nil, nil, core.WrapError(core.ErrInvalidDateRange,
				fmt.Errorf("parsing end date: %w", err))
		}
	}

	eng := engine.New(
		a.bars,
		a.buildSlippage(),
		a.buildFees(),
		a.buildSizer(),
		decimal.NewFromFloat(a.cfg.Backtest.InitialCapital),
		a.logger,
	)

	started := time.Now()
	result, runErr := eng.Run(ctx, gen, a.cfg.Backtest.Universe, start, end)
	if result == nil {
		// Input validation failure, nothing to persist.
		return nil, nil, runErr
	}
	a.metrics.RecordRun(string(result.State), time.Since(started).Seconds())
	a.recordOrderMetrics(result)

	if serr := a.runs.SaveRun(ctx, result); serr != nil {
		a.logger.Error("persisting run failed",
			zap.String("run_id", result.RunID), zap.Error(serr))
		if runErr == nil {
			runErr = serr
		}
	}

	var evaluation *weekly.Evaluation
	if result.State == engine.StateCompleted {
		ev := a.evaluator.Evaluate(result.Weekly)
		evaluation = &ev
		a.metrics.RecordBadge(string(ev.Badge))
		a.logger.Info("run evaluated",
			zap.String("run_id", result.RunID),
			zap.String("badge", string(ev.Badge)),
			zap.Float64("mean_weekly_return", ev.MeanReturn))
	}

	if a.archiver != nil {
		if aerr := a.archiver.ArchiveRun(ctx, result, evaluation); aerr != nil {
			a.logger.Error("archiving run failed",
				zap.String("run_id", result.RunID), zap.Error(aerr))
		}
	}
	return result, evaluation, runErr
}

// EvaluateRun re-scores a stored run's weekly series.
func (a *App) EvaluateRun(ctx context.Context, runID string) (*weekly.Evaluation, error) {
	result, err := a.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if result.State != engine.StateCompleted {
		return nil, core.WrapError(core.ErrRunNotFinished,
			fmt.Errorf("run %s is %s", runID, result.State))
	}
	ev := a.evaluator.Evaluate(result.Weekly)
	a.metrics.RecordBadge(string(ev.Badge))
	return &ev, nil
}

// ListRuns returns stored run summaries, most recent first.
func (a *App) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	return a.runs.ListRuns(ctx, limit)
}

// Metrics exposes the Prometheus registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

func (a *App) recordOrderMetrics(result *engine.Result) {
	buys, sells := 0, 0
	for _, order := range result.Orders {
		if order.Side == core.SideBuy {
			buys++
		} else {
			sells++
		}
	}
	a.metrics.RecordOrders(string(core.SideBuy), buys)
	a.metrics.RecordOrders(string(core.SideSell), sells)
	a.metrics.RecordSignals(result.Generator, result.SignalCount)
	a.metrics.RecordBarsLoaded(len(result.EquityCurve))
}

// Close releases the storage backends.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}
