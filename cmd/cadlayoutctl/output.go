package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"

	"cadlayout/internal/model"
	"cadlayout/internal/stats"
	"cadlayout/pkg/cadlayout"
)

func writeJSON(out io.Writer, value any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func renderTable(out io.Writer, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

func renderRun(out io.Writer, summary cadlayout.RunSummary) error {
	fmt.Fprintf(out, "run %s %s after %d generations: %d internode connections (was %d)\n",
		summary.RunID, summary.Outcome, len(summary.BestByGeneration), summary.FinalBest, summary.Stats.InitialBest)
	return renderNodes(out, summary.Distribution)
}

func renderNodes(out io.Writer, nodes map[string]int) error {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if nodes[names[i]] != nodes[names[j]] {
			return nodes[names[i]] < nodes[names[j]]
		}
		return names[i] < names[j]
	})
	data := pterm.TableData{{"Element", "Node"}}
	for _, name := range names {
		data = append(data, []string{name, strconv.Itoa(nodes[name])})
	}
	return renderTable(out, data)
}

func renderDistribution(out io.Writer, d model.Distribution) error {
	fmt.Fprintf(out, "run %s generation %d: %d internode connections\n", d.RunID, d.Generation, d.Connections)
	return renderNodes(out, d.Nodes)
}

func renderRuns(out io.Writer, runs []model.RunRecord) error {
	data := pterm.TableData{{"Run", "Created", "Schema", "Nodes", "Selection", "Outcome", "Generation", "Best"}}
	for _, run := range runs {
		data = append(data, []string{
			run.ID,
			run.CreatedAt.Format(time.DateTime),
			run.SchemaName,
			strconv.Itoa(run.Nodes),
			run.ParentSelection + "/" + run.SurvivorSelection,
			run.Outcome,
			strconv.Itoa(run.FinalGeneration),
			strconv.Itoa(run.BestConnections),
		})
	}
	return renderTable(out, data)
}

func renderHistory(out io.Writer, history []model.GenerationDiagnostics) error {
	data := pterm.TableData{{"Generation", "Min", "Avg", "Max"}}
	for _, item := range history {
		data = append(data, []string{
			strconv.Itoa(item.Generation),
			strconv.Itoa(item.MinConnections),
			strconv.FormatFloat(item.AverageConnections, 'f', 2, 64),
			strconv.Itoa(item.MaxConnections),
		})
	}
	return renderTable(out, data)
}

func renderBenchmark(out io.Writer, report stats.BenchmarkReport) error {
	data := pterm.TableData{{"Combination", "Runs", "Final mean", "Std", "Min", "Max"}}
	for _, series := range report.Series {
		data = append(data, []string{
			series.Label(),
			strconv.Itoa(series.Runs),
			strconv.FormatFloat(series.FinalBestMean, 'f', 2, 64),
			strconv.FormatFloat(series.FinalBestStd, 'f', 2, 64),
			strconv.Itoa(series.FinalBestMin),
			strconv.Itoa(series.FinalBestMax),
		})
	}
	if err := renderTable(out, data); err != nil {
		return err
	}
	if best, ok := report.Best(); ok {
		fmt.Fprintf(out, "best combination: %s\n", best.Label())
	}
	return nil
}
