package storage

import (
	"context"

	"cadlayout/internal/model"
)

// Store persists layout runs: the run record, its per-generation history and the
// best distribution found.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveGenerations(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveDistribution(ctx context.Context, runID string, distribution model.Distribution) error
	GetDistribution(ctx context.Context, runID string) (model.Distribution, bool, error)
}
