package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"cadlayout/internal/layout"
	"cadlayout/internal/schema"
)

const DefaultRepeats = 10

type BenchmarkConfig struct {
	Schema         *schema.Schema
	Nodes          int
	Generations    int
	PopulationSize int
	// Repeats is the number of seeded runs averaged per operator combination.
	Repeats   int
	Seed      int64
	Parents   []layout.ParentSelection
	Survivors []layout.SurvivorSelection
	// Parallel bounds how many combinations run at once. Values <= 1 run them in order.
	Parallel int
	Logger   *zerolog.Logger
}

// BenchmarkGeneration is the min/avg/max fitness of one generation averaged
// over the repeats of a series.
type BenchmarkGeneration struct {
	Generation         int     `json:"generation"`
	MinConnections     float64 `json:"min_connections"`
	AverageConnections float64 `json:"average_connections"`
	MaxConnections     float64 `json:"max_connections"`
}

// BenchmarkSeries is the averaged history of one parent/survivor combination.
type BenchmarkSeries struct {
	ParentSelection   layout.ParentSelection   `json:"parent_selection"`
	SurvivorSelection layout.SurvivorSelection `json:"survivor_selection"`
	Runs              int                      `json:"runs"`
	Generations       []BenchmarkGeneration    `json:"generations"`
	FinalBestMean     float64                  `json:"final_best_mean"`
	FinalBestStd      float64                  `json:"final_best_std"`
	FinalBestMin      int                      `json:"final_best_min"`
	FinalBestMax      int                      `json:"final_best_max"`
}

// Label names the combination the way reports print it.
func (s BenchmarkSeries) Label() string {
	return fmt.Sprintf("%s/%s", s.ParentSelection, s.SurvivorSelection)
}

type BenchmarkReport struct {
	GeneratedAt    string            `json:"generated_at_utc"`
	Elements       int               `json:"elements"`
	Chains         int               `json:"chains"`
	Nodes          int               `json:"nodes"`
	Generations    int               `json:"generations"`
	PopulationSize int               `json:"population_size"`
	Repeats        int               `json:"repeats"`
	Seed           int64             `json:"seed"`
	Series         []BenchmarkSeries `json:"series"`
}

// Best returns the series with the lowest mean final fitness. Earlier series win
// ties.
func (r BenchmarkReport) Best() (BenchmarkSeries, bool) {
	if len(r.Series) == 0 {
		return BenchmarkSeries{}, false
	}
	best := r.Series[0]
	for _, series := range r.Series[1:] {
		if series.FinalBestMean < best.FinalBestMean {
			best = series
		}
	}
	return best, true
}

// Benchmark runs every parent/survivor combination Repeats times, seeding repeat
// i with Seed+i, and averages min/avg/max fitness per generation. A canceled
// context aborts the benchmark with the context error.
func Benchmark(ctx context.Context, cfg BenchmarkConfig) (BenchmarkReport, error) {
	if cfg.Schema == nil {
		return BenchmarkReport{}, fmt.Errorf("%w: schema is required", layout.ErrInvalidConfig)
	}
	if cfg.Repeats <= 0 {
		cfg.Repeats = DefaultRepeats
	}
	if len(cfg.Parents) == 0 {
		cfg.Parents = layout.ParentSelections()
	}
	if len(cfg.Survivors) == 0 {
		cfg.Survivors = layout.SurvivorSelections()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	type combination struct {
		parent   layout.ParentSelection
		survivor layout.SurvivorSelection
	}
	var combinations []combination
	engines := make([]*layout.Engine, 0, len(cfg.Parents)*len(cfg.Survivors))
	for _, parent := range cfg.Parents {
		for _, survivor := range cfg.Survivors {
			engine, err := layout.NewEngine(layout.Config{
				Schema:            cfg.Schema,
				Nodes:             cfg.Nodes,
				Generations:       cfg.Generations,
				PopulationSize:    cfg.PopulationSize,
				ParentSelection:   parent,
				SurvivorSelection: survivor,
			})
			if err != nil {
				return BenchmarkReport{}, err
			}
			combinations = append(combinations, combination{parent: parent, survivor: survivor})
			engines = append(engines, engine)
		}
	}

	series := make([]BenchmarkSeries, len(engines))
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(parallel)
	for i, engine := range engines {
		p.Go(func(ctx context.Context) error {
			started := time.Now()
			result, err := runSeries(ctx, engine, cfg.Repeats, cfg.Seed)
			if err != nil {
				return err
			}
			result.ParentSelection = combinations[i].parent
			result.SurvivorSelection = combinations[i].survivor
			series[i] = result
			logger.Info().
				Str("combination", result.Label()).
				Float64("final_best_mean", result.FinalBestMean).
				Dur("elapsed", time.Since(started)).
				Msg("benchmark series completed")
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return BenchmarkReport{}, err
	}

	return BenchmarkReport{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Elements:       cfg.Schema.ElementCount(),
		Chains:         len(cfg.Schema.Chains()),
		Nodes:          cfg.Nodes,
		Generations:    cfg.Generations,
		PopulationSize: cfg.PopulationSize,
		Repeats:        cfg.Repeats,
		Seed:           cfg.Seed,
		Series:         series,
	}, nil
}

func runSeries(ctx context.Context, engine *layout.Engine, repeats int, seed int64) (BenchmarkSeries, error) {
	generations := engine.Config().Generations
	sums := make([]BenchmarkGeneration, generations)
	finals := make([]float64, 0, repeats)

	for r := 0; r < repeats; r++ {
		summary, err := engine.WithSeed(seed+int64(r)).Run(ctx, layout.Observer{})
		if err != nil {
			return BenchmarkSeries{}, err
		}
		if summary.Outcome == layout.OutcomeCanceled {
			return BenchmarkSeries{}, ctx.Err()
		}
		for g, item := range summary.History {
			sums[g].Generation = item.Generation
			sums[g].MinConnections += float64(item.MinConnections)
			sums[g].AverageConnections += item.AverageConnections
			sums[g].MaxConnections += float64(item.MaxConnections)
		}
		finals = append(finals, float64(summary.Final.MinConnections))
	}

	averaged := make([]BenchmarkGeneration, generations)
	for g, sum := range sums {
		averaged[g] = BenchmarkGeneration{
			Generation:         sum.Generation,
			MinConnections:     sum.MinConnections / float64(repeats),
			AverageConnections: sum.AverageConnections / float64(repeats),
			MaxConnections:     sum.MaxConnections / float64(repeats),
		}
	}
	mean, std := avgStd(finals)
	return BenchmarkSeries{
		Runs:          repeats,
		Generations:   averaged,
		FinalBestMean: mean,
		FinalBestStd:  std,
		FinalBestMin:  int(minFloat(finals)),
		FinalBestMax:  int(maxFloat(finals)),
	}, nil
}
