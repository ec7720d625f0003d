// Package cli implements the ll97 command line: batch builds of the
// projection tables and an HTTP server over the same dataset.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stwalsh4118/ll97/internal/config"
	"github.com/stwalsh4118/ll97/internal/logger"
)

// Version is overridden at link time with -ldflags "-X github.com/stwalsh4118/ll97/internal/cli.Version=...".
var Version = "dev" //nolint:gochecknoglobals // set by the linker

// app is the state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	verbose    bool
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates the root Cobra command for the ll97 CLI.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "ll97",
		Short: "NYC Local Law 97 emissions, cost and penalty projections",
		Long: `ll97 joins the LL97 covered buildings list with LL84 energy benchmarking
data and projects carbon emissions, energy cost, emissions limits and
estimated penalties for every covered building from 2024 through 2050.`,
		Version:      Version,
		SilenceUsage: true,
		Example:      rootCmdExample,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.String("env", "", "environment name (development, production)")

	cmd.AddCommand(newBuildCmd(a), newServeCmd(a), newVersionCmd())

	return cmd
}

const rootCmdExample = `  # Build both projection tables as CSV in ./out
  ll97 build --ll97-dataset ll97_covered_buildings.csv \
    --ll84-dataset ll84_benchmarking.csv \
    --carbon-emissions-by-building-type carbon_thresholds.csv \
    --output-dir out

  # Serve projections over HTTP
  ll97 serve --ll97-dataset ll97.csv --ll84-dataset ll84.csv --port 8080`

// load merges flags, the environment and the optional config file into a Config.
// Only the flags of the running command are bound, so subcommands sharing a
// key do not shadow each other.
func (a *app) load(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	keys["env"] = config.KeyEnv
	for name, key := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return nil, fmt.Errorf("unknown flag %q", name)
		}
		if err := a.v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	if a.configFile != "" {
		if err := config.ReadFile(a.v, a.configFile); err != nil {
			return nil, err
		}
	}
	if a.verbose {
		a.v.Set(config.KeyLogLevel, "debug")
	}

	return config.FromViper(a.v)
}

// logger builds the command logger writing to out.
func (a *app) logger(cfg *config.Config, out io.Writer) *logger.Logger {
	return logger.NewWithOptions(logger.Options{
		Env:    cfg.Server.Env,
		Level:  cfg.Server.LogLevel,
		Output: out,
	})
}

// inputFlagKeys maps the input flags shared by build and serve to config keys.
func inputFlagKeys() map[string]string {
	return map[string]string{
		"ll97-dataset":                      config.KeyPrimaryDataset,
		"ll84-dataset":                      config.KeySecondaryDataset,
		"ll97-query":                        config.KeyPrimaryQuery,
		"ll84-query":                        config.KeySecondaryQuery,
		"carbon-emissions-by-building-type": config.KeyThresholdsFile,
		"workers":                           config.KeyWorkers,
	}
}

func addInputFlags(flags *pflag.FlagSet) {
	flags.String("ll97-dataset", "", "CSV of LL97 covered buildings (primary source)")
	flags.String("ll84-dataset", "", "CSV of LL84 energy benchmarking data (secondary source)")
	flags.String("ll97-query", "", "SQL query returning the covered buildings, instead of --ll97-dataset")
	flags.String("ll84-query", "", "SQL query returning the benchmarking data, instead of --ll84-dataset")
	flags.String("carbon-emissions-by-building-type", "",
		"emissions limits per building type and period (CSV or YAML)")
	flags.Int("workers", 0, "records projected concurrently (0 = one per CPU)")
}
