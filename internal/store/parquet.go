package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

var _ BarStore = (*ParquetBarStore)(nil)

// ParquetBarStore keeps bars in Parquet files on disk, one file per
// symbol and year:
//
//	<DataDir>/bars/<TIMEFRAME>/<SYMBOL>/<YYYY>.parquet
type ParquetBarStore struct {
	DataDir string
}

func NewParquetBarStore(dataDir string) *ParquetBarStore {
	return &ParquetBarStore{DataDir: dataDir}
}

// barRecord is the on-disk Parquet schema.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timeframe string  `parquet:"timeframe"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

func (s *ParquetBarStore) SaveBars(ctx context.Context, bars []core.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	type key struct {
		symbol    string
		timeframe core.Timeframe
		year      int
	}
	groups := make(map[key][]barRecord)
	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}
		k := key{symbol: bar.Symbol, timeframe: bar.Timeframe, year: bar.Timestamp.Year()}
		groups[k] = append(groups[k], barRecord{
			Symbol:    bar.Symbol,
			Timeframe: string(bar.Timeframe),
			Timestamp: bar.Timestamp.UnixMilli(),
			Open:      bar.Open.InexactFloat64(),
			High:      bar.High.InexactFloat64(),
			Low:       bar.Low.InexactFloat64(),
			Close:     bar.Close.InexactFloat64(),
			Volume:    bar.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, k.timeframe, k.year)
		existing, _ := readParquetFile[barRecord](path)
		merged := mergeRecords(existing, records)
		if err := writeParquetFile(path, merged); err != nil {
			return core.WrapError(core.ErrStoreFailed,
				fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err))
		}
	}
	return nil
}

func (s *ParquetBarStore) FetchBars(ctx context.Context, universe []string, start, end time.Time) ([]core.Bar, error) {
	if len(universe) == 0 {
		return nil, core.ErrEmptyUniverse
	}
	var bars []core.Bar
	for _, symbol := range universe {
		for year := start.Year(); year <= end.Year(); year++ {
			path := s.barPath(symbol, core.TimeframeDaily, year)
			records, err := readParquetFile[barRecord](path)
			if err != nil {
				// No file for this symbol/year.
				continue
			}
			for _, r := range records {
				ts := time.UnixMilli(r.Timestamp).UTC()
				if ts.Before(start) || ts.After(end) {
					continue
				}
				bars = append(bars, core.Bar{
					Symbol:    r.Symbol,
					Timeframe: core.Timeframe(r.Timeframe),
					Open:      decimal.NewFromFloat(r.Open),
					High:      decimal.NewFromFloat(r.High),
					Low:       decimal.NewFromFloat(r.Low),
					Close:     decimal.NewFromFloat(r.Close),
					Volume:    r.Volume,
					Timestamp: ts,
				})
			}
		}
	}
	sort.Slice(bars, func(i, j int) bool {
		if !bars[i].Timestamp.Equal(bars[j].Timestamp) {
			return bars[i].Timestamp.Before(bars[j].Timestamp)
		}
		return bars[i].Symbol < bars[j].Symbol
	})
	return bars, nil
}

func (s *ParquetBarStore) Symbols(ctx context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "bars", string(core.TimeframeDaily))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	var symbols []string
	for _, entry := range entries {
		if entry.IsDir() {
			symbols = append(symbols, entry.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *ParquetBarStore) barPath(symbol string, timeframe core.Timeframe, year int) string {
	return filepath.Join(s.DataDir, "bars", string(timeframe),
		strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeRecords deduplicates by (symbol, timestamp), incoming records
// winning, sorted by timestamp.
func mergeRecords(existing, incoming []barRecord) []barRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
