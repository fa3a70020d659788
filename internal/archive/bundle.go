package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paperline/paperline/internal/engine"
	"github.com/paperline/paperline/internal/weekly"
)

// Archiver writes finished runs and their evaluations into a Backend
// as a JSON bundle per run:
//
//	runs/<YYYY>/<RUN_ID>/result.json
//	runs/<YYYY>/<RUN_ID>/evaluation.json
type Archiver struct {
	backend Backend
}

func NewArchiver(backend Backend) *Archiver {
	return &Archiver{backend: backend}
}

func bundlePrefix(result *engine.Result) string {
	return fmt.Sprintf("runs/%04d/%s", result.StartedAt.UTC().Year(), result.RunID)
}

// ArchiveRun stores the run result and, when present, its evaluation.
func (a *Archiver) ArchiveRun(ctx context.Context, result *engine.Result, evaluation *weekly.Evaluation) error {
	prefix := bundlePrefix(result)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := a.backend.Put(ctx, prefix+"/result.json", data); err != nil {
		return fmt.Errorf("archiving result %s: %w", result.RunID, err)
	}

	if evaluation != nil {
		data, err = json.MarshalIndent(evaluation, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding evaluation: %w", err)
		}
		if err := a.backend.Put(ctx, prefix+"/evaluation.json", data); err != nil {
			return fmt.Errorf("archiving evaluation %s: %w", result.RunID, err)
		}
	}
	return nil
}

// LoadRun reads an archived result back by its bundle path prefix.
func (a *Archiver) LoadRun(ctx context.Context, year int, runID string) (*engine.Result, error) {
	data, err := a.backend.Get(ctx, fmt.Sprintf("runs/%04d/%s/result.json", year, runID))
	if err != nil {
		return nil, err
	}
	var result engine.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding archived result: %w", err)
	}
	return &result, nil
}

// ListRuns returns the bundle paths archived for a year.
func (a *Archiver) ListRuns(ctx context.Context, year int) ([]string, error) {
	return a.backend.List(ctx, fmt.Sprintf("runs/%04d", year))
}
