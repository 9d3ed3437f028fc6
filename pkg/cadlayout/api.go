package cadlayout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"cadlayout/internal/layout"
	"cadlayout/internal/model"
	"cadlayout/internal/schema"
	"cadlayout/internal/stats"
	"cadlayout/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultDBPath        = "cadlayout.db"
)

var ErrRunNotFound = errors.New("run not found")

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	Logger        *zerolog.Logger
}

// Client runs layouts and keeps their history in the configured store.
type Client struct {
	store  storage.Store
	logger zerolog.Logger

	benchmarksDir string

	initMu      sync.Mutex
	initialized bool
}

type RunRequest struct {
	Schema            *schema.Schema
	SchemaName        string
	Nodes             int
	Population        int
	Generations       int
	Seed              int64
	Workers           int
	ParentSelection   string
	SurvivorSelection string
	// Observer receives engine notifications while the run is in progress.
	Observer layout.Observer
}

type RunSummary struct {
	RunID            string
	Outcome          layout.Outcome
	BestByGeneration []int
	FinalBest        int
	Distribution     map[string]int
	Stats            stats.RunSummary
}

type RunsRequest struct {
	Limit int
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type BenchmarkRequest struct {
	Schema      *schema.Schema
	Nodes       int
	Population  int
	Generations int
	Repeats     int
	Seed        int64
	Parallel    int
	Parents     []string
	Survivors   []string
	// ReportName, when set, writes the report under the benchmarks directory.
	ReportName string
}

type BenchmarkSummary struct {
	Report     stats.BenchmarkReport
	ReportPath string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		logger:        logger,
		benchmarksDir: benchmarksDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Run executes one layout and persists its record, history and best
// distribution. A canceled context still persists the partial run and reports
// layout.OutcomeCanceled without an error.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Nodes < 0 || req.Population < 0 || req.Generations < 0 {
		return RunSummary{}, fmt.Errorf("%w: nodes, population and generations must not be negative (got %d, %d, %d)",
			layout.ErrInvalidConfig, req.Nodes, req.Population, req.Generations)
	}
	if req.Nodes == 0 {
		req.Nodes = 2
	}
	if req.Population == 0 {
		req.Population = 20
	}
	if req.Generations == 0 {
		req.Generations = 100
	}
	if req.ParentSelection == "" {
		req.ParentSelection = string(layout.Panmixia)
	}
	if req.SurvivorSelection == "" {
		req.SurvivorSelection = string(layout.Elitism)
	}
	if req.SchemaName == "" {
		req.SchemaName = "schema"
	}

	parent, err := layout.ParseParentSelection(req.ParentSelection)
	if err != nil {
		return RunSummary{}, err
	}
	survivor, err := layout.ParseSurvivorSelection(req.SurvivorSelection)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	runID := id.String()
	logger := c.logger.With().Str("run_id", runID).Logger()

	engine, err := layout.NewEngine(layout.Config{
		Schema:            req.Schema,
		Nodes:             req.Nodes,
		Generations:       req.Generations,
		PopulationSize:    req.Population,
		ParentSelection:   parent,
		SurvivorSelection: survivor,
		Seed:              req.Seed,
		Workers:           req.Workers,
		Logger:            &logger,
	})
	if err != nil {
		return RunSummary{}, err
	}

	createdAt := time.Now().UTC()
	result, err := engine.Run(ctx, req.Observer)
	if err != nil {
		return RunSummary{}, err
	}

	// Persist even when the run was canceled.
	saveCtx := context.WithoutCancel(ctx)
	history := stats.Diagnostics(result.History)
	run := model.RunRecord{
		VersionedRecord:   storage.Versioned(),
		ID:                runID,
		CreatedAt:         createdAt,
		SchemaName:        req.SchemaName,
		Elements:          req.Schema.ElementCount(),
		Chains:            len(req.Schema.Chains()),
		Nodes:             req.Nodes,
		Generations:       req.Generations,
		PopulationSize:    req.Population,
		ParentSelection:   string(parent),
		SurvivorSelection: string(survivor),
		Seed:              req.Seed,
		Outcome:           string(result.Outcome),
		FinalGeneration:   result.Final.Generation,
		BestConnections:   result.Final.MinConnections,
	}
	if err := c.store.SaveRun(saveCtx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGenerations(saveCtx, runID, history); err != nil {
		return RunSummary{}, err
	}
	err = c.store.SaveDistribution(saveCtx, runID, model.Distribution{
		VersionedRecord: storage.Versioned(),
		RunID:           runID,
		Generation:      result.Final.Generation,
		Connections:     result.Final.MinConnections,
		Nodes:           result.Final.Distribution,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		Outcome:          result.Outcome,
		BestByGeneration: result.BestByGeneration(),
		FinalBest:        result.Final.MinConnections,
		Distribution:     result.Final.Distribution,
		Stats:            stats.Summarize(history),
	}, nil
}

// Runs lists stored runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.RunRecord, 0, min(len(runs), req.Limit))
	for i := len(runs) - 1; i >= 0 && len(out) < req.Limit; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no history for %s", ErrRunNotFound, runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

// Best returns the best distribution stored for a run.
func (c *Client) Best(ctx context.Context, runID string, latest bool) (model.Distribution, error) {
	runID, err := c.resolveRunID(ctx, runID, latest)
	if err != nil {
		return model.Distribution{}, err
	}
	distribution, ok, err := c.store.GetDistribution(ctx, runID)
	if err != nil {
		return model.Distribution{}, err
	}
	if !ok {
		return model.Distribution{}, fmt.Errorf("%w: no distribution for %s", ErrRunNotFound, runID)
	}
	return distribution, nil
}

// Accept writes the stored best distribution of a run onto s.
func (c *Client) Accept(ctx context.Context, runID string, s *schema.Schema) error {
	distribution, err := c.Best(ctx, runID, false)
	if err != nil {
		return err
	}
	if err := s.AssignNodes(distribution.Nodes); err != nil {
		return fmt.Errorf("accept run %s: %w", distribution.RunID, err)
	}
	c.logger.Info().
		Str("run_id", distribution.RunID).
		Int("connections", s.InternodeConnections()).
		Msg("distribution accepted")
	return nil
}

func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	if req.Nodes < 0 || req.Population < 0 || req.Generations < 0 {
		return BenchmarkSummary{}, fmt.Errorf("%w: nodes, population and generations must not be negative (got %d, %d, %d)",
			layout.ErrInvalidConfig, req.Nodes, req.Population, req.Generations)
	}
	if req.Nodes == 0 {
		req.Nodes = 2
	}
	if req.Population == 0 {
		req.Population = 20
	}
	if req.Generations == 0 {
		req.Generations = 100
	}

	parents := make([]layout.ParentSelection, 0, len(req.Parents))
	for _, name := range req.Parents {
		parent, err := layout.ParseParentSelection(name)
		if err != nil {
			return BenchmarkSummary{}, err
		}
		parents = append(parents, parent)
	}
	survivors := make([]layout.SurvivorSelection, 0, len(req.Survivors))
	for _, name := range req.Survivors {
		survivor, err := layout.ParseSurvivorSelection(name)
		if err != nil {
			return BenchmarkSummary{}, err
		}
		survivors = append(survivors, survivor)
	}

	report, err := stats.Benchmark(ctx, stats.BenchmarkConfig{
		Schema:         req.Schema,
		Nodes:          req.Nodes,
		Generations:    req.Generations,
		PopulationSize: req.Population,
		Repeats:        req.Repeats,
		Seed:           req.Seed,
		Parents:        parents,
		Survivors:      survivors,
		Parallel:       req.Parallel,
		Logger:         &c.logger,
	})
	if err != nil {
		return BenchmarkSummary{}, err
	}

	summary := BenchmarkSummary{Report: report}
	if req.ReportName != "" {
		path, err := stats.WriteBenchmarkReport(c.benchmarksDir, req.ReportName, report)
		if err != nil {
			return BenchmarkSummary{}, err
		}
		summary.ReportPath = path
	}
	return summary, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	if !latest {
		if runID == "" {
			return "", errors.New("run id or latest is required")
		}
		return runID, nil
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs available", ErrRunNotFound)
	}
	return runs[len(runs)-1].ID, nil
}
