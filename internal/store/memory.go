package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/engine"
)

var _ BarStore = (*MemoryStore)(nil)
var _ RunStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory BarStore and RunStore, used in tests and
// as a scratch backend for one-off runs.
type MemoryStore struct {
	mu   sync.RWMutex
	bars map[string][]core.Bar // keyed by symbol
	runs map[string]*engine.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bars: make(map[string][]core.Bar),
		runs: make(map[string]*engine.Result),
	}
}

func (m *MemoryStore) SaveBars(ctx context.Context, bars []core.Bar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}
		existing := m.bars[bar.Symbol]
		replaced := false
		for i := range existing {
			if existing[i].Timeframe == bar.Timeframe && existing[i].Timestamp.Equal(bar.Timestamp) {
				existing[i] = bar
				replaced = true
				break
			}
		}
		if !replaced {
			m.bars[bar.Symbol] = append(existing, bar)
		}
	}
	return nil
}

func (m *MemoryStore) FetchBars(ctx context.Context, universe []string, start, end time.Time) ([]core.Bar, error) {
	if len(universe) == 0 {
		return nil, core.ErrEmptyUniverse
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Bar
	for _, symbol := range universe {
		for _, bar := range m.bars[symbol] {
			if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
				continue
			}
			out = append(out, bar)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

func (m *MemoryStore) Symbols(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	symbols := make([]string, 0, len(m.bars))
	for sym := range m.bars {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (m *MemoryStore) SaveRun(ctx context.Context, result *engine.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.runs[result.RunID] = &copied
	return nil
}

func (m *MemoryStore) GetRun(ctx context.Context, runID string) (*engine.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.runs[runID]
	if !ok {
		return nil, core.ErrNoData
	}
	copied := *result
	return &copied, nil
}

func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summaries := make([]RunSummary, 0, len(m.runs))
	for _, result := range m.runs {
		summaries = append(summaries, RunSummary{
			RunID:       result.RunID,
			Generator:   result.Generator,
			State:       result.State,
			FinalEquity: result.FinalEquity,
			StartedAt:   result.StartedAt,
			FinishedAt:  result.FinishedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
