package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadlayout/internal/layout"
	"cadlayout/internal/model"
	"cadlayout/internal/schema"
)

func benchSchema(t *testing.T) *schema.Schema {
	t.Helper()
	var chains []*schema.Chain
	for _, names := range [][]string{
		{"vcc", "U1", "U2", "C1"},
		{"gnd", "U1", "U2", "C2", "C1"},
		{"clk", "U1", "X1"},
		{"led", "U2", "R1", "D1"},
	} {
		chain, err := schema.ChainOf(names[0], names[1:]...)
		require.NoError(t, err)
		chains = append(chains, chain)
	}
	s, err := schema.New(chains)
	require.NoError(t, err)
	return s
}

func TestSummarize(t *testing.T) {
	history := []model.GenerationDiagnostics{
		{Generation: 1, MinConnections: 8},
		{Generation: 2, MinConnections: 6},
		{Generation: 3, MinConnections: 4},
		{Generation: 4, MinConnections: 4},
	}
	summary := Summarize(history)
	assert.Equal(t, 4, summary.Generations)
	assert.Equal(t, 8, summary.InitialBest)
	assert.Equal(t, 4, summary.FinalBest)
	assert.Equal(t, 4, summary.Improvement)
	assert.Equal(t, 3, summary.ImprovedAt)
	assert.Equal(t, []int{8, 6, 4, 4}, summary.BestByGeneration)
	assert.InDelta(t, 5.5, summary.BestMean, 1e-9)

	assert.Equal(t, RunSummary{}, Summarize(nil))
}

func TestDiagnostics(t *testing.T) {
	out := Diagnostics([]layout.Stats{{Generation: 1, MinConnections: 2, AverageConnections: 2.5, MaxConnections: 3}})
	assert.Equal(t, []model.GenerationDiagnostics{{Generation: 1, MinConnections: 2, AverageConnections: 2.5, MaxConnections: 3}}, out)
}

func TestBenchmarkCoversEveryCombination(t *testing.T) {
	cfg := BenchmarkConfig{
		Schema:         benchSchema(t),
		Nodes:          2,
		Generations:    5,
		PopulationSize: 6,
		Repeats:        3,
		Seed:           11,
		Parallel:       2,
	}
	report, err := Benchmark(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Series, 6)
	assert.Equal(t, 3, report.Repeats)

	seen := map[string]bool{}
	for _, series := range report.Series {
		seen[series.Label()] = true
		assert.Equal(t, 3, series.Runs)
		require.Len(t, series.Generations, 5)
		for i, item := range series.Generations {
			assert.Equal(t, i+1, item.Generation)
			assert.LessOrEqual(t, item.MinConnections, item.MaxConnections)
		}
		assert.LessOrEqual(t, float64(series.FinalBestMin), series.FinalBestMean)
		assert.LessOrEqual(t, series.FinalBestMean, float64(series.FinalBestMax))
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, "inbreeding/elitism", report.Series[0].Label())

	again, err := Benchmark(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, report.Series, again.Series)

	best, ok := report.Best()
	require.True(t, ok)
	for _, series := range report.Series {
		assert.LessOrEqual(t, best.FinalBestMean, series.FinalBestMean)
	}
}

func TestBenchmarkAveragesSeededRunsExactly(t *testing.T) {
	s := benchSchema(t)
	const repeats, seed = 3, 5
	report, err := Benchmark(context.Background(), BenchmarkConfig{
		Schema:         s,
		Nodes:          3,
		Generations:    4,
		PopulationSize: 6,
		Repeats:        repeats,
		Seed:           seed,
		Parents:        []layout.ParentSelection{layout.Panmixia},
		Survivors:      []layout.SurvivorSelection{layout.Tournament},
	})
	require.NoError(t, err)
	require.Len(t, report.Series, 1)

	engine, err := layout.NewEngine(layout.Config{
		Schema:            s,
		Nodes:             3,
		Generations:       4,
		PopulationSize:    6,
		ParentSelection:   layout.Panmixia,
		SurvivorSelection: layout.Tournament,
	})
	require.NoError(t, err)
	want := make([]BenchmarkGeneration, 4)
	for r := 0; r < repeats; r++ {
		summary, err := engine.WithSeed(seed+int64(r)).Run(context.Background(), layout.Observer{})
		require.NoError(t, err)
		for g, item := range summary.History {
			want[g].Generation = item.Generation
			want[g].MinConnections += float64(item.MinConnections) / repeats
			want[g].AverageConnections += item.AverageConnections / repeats
			want[g].MaxConnections += float64(item.MaxConnections) / repeats
		}
	}

	got := report.Series[0].Generations
	require.Len(t, got, len(want))
	for g := range want {
		assert.Equal(t, want[g].Generation, got[g].Generation)
		assert.InDelta(t, want[g].MinConnections, got[g].MinConnections, 1e-9)
		assert.InDelta(t, want[g].AverageConnections, got[g].AverageConnections, 1e-9)
		assert.InDelta(t, want[g].MaxConnections, got[g].MaxConnections, 1e-9)
	}
}

func TestBenchmarkRestrictsCombinations(t *testing.T) {
	report, err := Benchmark(context.Background(), BenchmarkConfig{
		Schema:         benchSchema(t),
		Nodes:          2,
		Generations:    2,
		PopulationSize: 4,
		Repeats:        1,
		Parents:        []layout.ParentSelection{layout.Panmixia},
		Survivors:      []layout.SurvivorSelection{layout.Tournament},
	})
	require.NoError(t, err)
	require.Len(t, report.Series, 1)
	assert.Equal(t, "panmixia/tournament", report.Series[0].Label())
}

func TestBenchmarkRejectsInvalidConfig(t *testing.T) {
	_, err := Benchmark(context.Background(), BenchmarkConfig{Schema: benchSchema(t), Nodes: 0, Generations: 2, PopulationSize: 4})
	require.ErrorIs(t, err, layout.ErrInvalidConfig)

	_, err = Benchmark(context.Background(), BenchmarkConfig{})
	require.ErrorIs(t, err, layout.ErrInvalidConfig)
}

func TestBenchmarkCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Benchmark(ctx, BenchmarkConfig{
		Schema:         benchSchema(t),
		Nodes:          2,
		Generations:    3,
		PopulationSize: 4,
		Repeats:        2,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBenchmarkReportRoundTrip(t *testing.T) {
	report := BenchmarkReport{
		Nodes:   2,
		Repeats: 1,
		Series: []BenchmarkSeries{{
			ParentSelection:   layout.Panmixia,
			SurvivorSelection: layout.Elitism,
			Runs:              1,
			Generations:       []BenchmarkGeneration{{Generation: 1, MinConnections: 3.5, AverageConnections: 4, MaxConnections: 4.5}},
			FinalBestMean:     3,
		}},
	}
	path, err := WriteBenchmarkReport(t.TempDir(), "smoke", report)
	require.NoError(t, err)
	assert.Equal(t, "benchmark_report.json", filepath.Base(path))

	got, err := ReadBenchmarkReport(path)
	require.NoError(t, err)
	assert.Equal(t, report, got)
}
