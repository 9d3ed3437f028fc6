package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cadlayout/internal/logging"
	"cadlayout/internal/storage"
	"cadlayout/pkg/cadlayout"
)

type app struct {
	out    io.Writer
	logOut io.Writer
	logger zerolog.Logger

	configFile    string
	configUsed    string
	logLevel      string
	storeKind     string
	dbPath        string
	benchmarksDir string
}

// newApp builds the CLI writing results to out. Logs go to colorable stdout
// unless logOut is set.
func newApp(out, logOut io.Writer) *app {
	return &app{out: out, logOut: logOut, logger: zerolog.Nop()}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "cadlayoutctl",
		Short:         "Distribute schema elements across nodes with a genetic algorithm",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfiguration(cmd); err != nil {
				return err
			}
			return a.setupLogging()
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./cadlayout.yaml when present)")
	flags.StringVar(&a.logLevel, "loglevel", "info", "console log level: trace|debug|info|warn|error")
	flags.StringVar(&a.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite|bbolt")
	flags.StringVar(&a.dbPath, "db", "cadlayout.db", "database path for the sqlite and bbolt stores")
	flags.StringVar(&a.benchmarksDir, "benchmarks-dir", "benchmarks", "directory for benchmark reports")

	root.AddCommand(
		a.runCommand(),
		a.benchmarkCommand(),
		a.runsCommand(),
		a.historyCommand(),
		a.bestCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) setupLogging() error {
	var (
		logger zerolog.Logger
		err    error
	)
	if a.logOut == nil {
		logger, err = logging.Setup(a.logLevel)
	} else {
		logger, err = logging.New(a.logOut, a.logLevel)
	}
	if err != nil {
		return err
	}
	a.logger = logger
	if a.configUsed != "" {
		a.logger.Debug().Str("file", a.configUsed).Msg("using configuration file")
	}
	return nil
}

func (a *app) client() (*cadlayout.Client, error) {
	return cadlayout.New(cadlayout.Options{
		StoreKind:     a.storeKind,
		DBPath:        a.dbPath,
		BenchmarksDir: a.benchmarksDir,
		Logger:        &a.logger,
	})
}
