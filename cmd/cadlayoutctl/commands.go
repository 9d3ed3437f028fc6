package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadlayout/internal/layout"
	"cadlayout/pkg/cadlayout"
)

func (a *app) runCommand() *cobra.Command {
	var (
		schemaPath string
		req        cadlayout.RunRequest
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one layout and store its result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			req.Schema = s
			req.SchemaName = strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))

			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if summary.Outcome == layout.OutcomeCanceled {
				a.logger.Warn().Str("run_id", summary.RunID).Msg("run canceled, partial result stored")
			}
			if asJSON {
				return writeJSON(a.out, summary)
			}
			return renderRun(a.out, summary)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&schemaPath, "schema", "", "schema document (JSON)")
	flags.IntVar(&req.Nodes, "nodes", 2, "number of nodes")
	flags.IntVar(&req.Population, "population", 20, "population size")
	flags.IntVar(&req.Generations, "generations", 100, "number of generations")
	flags.Int64Var(&req.Seed, "seed", 1, "random seed")
	flags.IntVar(&req.Workers, "workers", 1, "parallel fitness workers")
	flags.StringVar(&req.ParentSelection, "parent", string(layout.Panmixia), "parent selection: panmixia|outbreeding|inbreeding")
	flags.StringVar(&req.SurvivorSelection, "survivor", string(layout.Elitism), "survivor selection: elitism|tournament")
	flags.BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func (a *app) benchmarkCommand() *cobra.Command {
	var (
		schemaPath string
		req        cadlayout.BenchmarkRequest
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare every parent/survivor selection combination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			req.Schema = s

			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Benchmark(cmd.Context(), req)
			if err != nil {
				return err
			}
			if summary.ReportPath != "" {
				a.logger.Info().Str("path", summary.ReportPath).Msg("benchmark report written")
			}
			if asJSON {
				return writeJSON(a.out, summary.Report)
			}
			return renderBenchmark(a.out, summary.Report)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&schemaPath, "schema", "", "schema document (JSON)")
	flags.IntVar(&req.Nodes, "nodes", 2, "number of nodes")
	flags.IntVar(&req.Population, "population", 20, "population size")
	flags.IntVar(&req.Generations, "generations", 100, "number of generations")
	flags.IntVar(&req.Repeats, "repeats", 10, "seeded runs per combination")
	flags.Int64Var(&req.Seed, "seed", 1, "seed of the first repeat")
	flags.IntVar(&req.Parallel, "parallel", 1, "combinations run concurrently")
	flags.StringSliceVar(&req.Parents, "parent", nil, "parent selections to include (default all)")
	flags.StringSliceVar(&req.Survivors, "survivor", nil, "survivor selections to include (default all)")
	flags.StringVar(&req.ReportName, "report", "", "write the report under benchmarks-dir/<report>")
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (a *app) runsCommand() *cobra.Command {
	var req cadlayout.RunsRequest
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderRuns(a.out, runs)
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", 20, "maximum runs to list")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var req cadlayout.HistoryRequest
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show per-generation fitness of a run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			history, err := client.History(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderHistory(a.out, history)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.RunID, "run-id", "", "run id")
	flags.BoolVar(&req.Latest, "latest", false, "use the most recent run")
	flags.IntVar(&req.Limit, "limit", 0, "maximum generations to show (0 = all)")
	return cmd
}

func (a *app) bestCommand() *cobra.Command {
	var (
		runID  string
		latest bool
		accept string
	)
	cmd := &cobra.Command{
		Use:   "best",
		Short: "Show the best distribution of a run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			distribution, err := client.Best(cmd.Context(), runID, latest)
			if err != nil {
				return err
			}
			if accept != "" {
				s, err := loadSchema(accept)
				if err != nil {
					return err
				}
				if err := client.Accept(cmd.Context(), distribution.RunID, s); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "accepted: %d internode connections\n", s.InternodeConnections())
			}
			return renderDistribution(a.out, distribution)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&runID, "run-id", "", "run id")
	flags.BoolVar(&latest, "latest", false, "use the most recent run")
	flags.StringVar(&accept, "accept", "", "apply the distribution to this schema document and report its connections")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "cadlayoutctl %s\n", version)
			return nil
		},
	}
}
