package stats

import (
	"math"

	"cadlayout/internal/layout"
	"cadlayout/internal/model"
)

// RunSummary condenses one run's history.
type RunSummary struct {
	Generations      int     `json:"generations"`
	InitialBest      int     `json:"initial_best"`
	FinalBest        int     `json:"final_best"`
	Improvement      int     `json:"improvement"`
	BestMean         float64 `json:"best_mean"`
	BestStd          float64 `json:"best_std"`
	BestByGeneration []int   `json:"best_by_generation"`
	// ImprovedAt is the first generation reaching FinalBest.
	ImprovedAt int `json:"improved_at"`
}

// Summarize reports the best fitness trajectory of a run. An empty history
// yields a zero summary.
func Summarize(history []model.GenerationDiagnostics) RunSummary {
	if len(history) == 0 {
		return RunSummary{}
	}
	best := make([]int, 0, len(history))
	values := make([]float64, 0, len(history))
	for _, item := range history {
		best = append(best, item.MinConnections)
		values = append(values, float64(item.MinConnections))
	}

	final := best[len(best)-1]
	improvedAt := history[len(history)-1].Generation
	for i := len(history) - 1; i >= 0 && best[i] == final; i-- {
		improvedAt = history[i].Generation
	}
	mean, std := avgStd(values)
	return RunSummary{
		Generations:      len(history),
		InitialBest:      best[0],
		FinalBest:        final,
		Improvement:      best[0] - final,
		BestMean:         mean,
		BestStd:          std,
		BestByGeneration: best,
		ImprovedAt:       improvedAt,
	}
}

// Diagnostics converts an engine history into persistence records.
func Diagnostics(history []layout.Stats) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, 0, len(history))
	for _, item := range history {
		out = append(out, model.GenerationDiagnostics{
			Generation:         item.Generation,
			MinConnections:     item.MinConnections,
			AverageConnections: item.AverageConnections,
			MaxConnections:     item.MaxConnections,
		})
	}
	return out
}

func avgStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	avg := sum / float64(len(values))
	variance := 0.0
	for _, value := range values {
		variance += (value - avg) * (value - avg)
	}
	return avg, math.Sqrt(variance / float64(len(values)))
}

func maxFloat(values []float64) float64 {
	max := values[0]
	for _, value := range values[1:] {
		if value > max {
			max = value
		}
	}
	return max
}

func minFloat(values []float64) float64 {
	min := values[0]
	for _, value := range values[1:] {
		if value < min {
			min = value
		}
	}
	return min
}
