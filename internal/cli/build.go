package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/ll97/internal/config"
	"github.com/stwalsh4118/ll97/internal/export"
	"github.com/stwalsh4118/ll97/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the per-year and per-period projection tables",
		Long: `Joins the covered buildings list with the benchmarking data, projects
every building from 2024 through 2050 and writes two tables to the output
directory: one with a column per year and metric, one with a column per
compliance period and metric.`,
		Example: `  # Write CSV tables to the current directory
  ll97 build --ll97-dataset ll97.csv --ll84-dataset ll84.csv \
    --carbon-emissions-by-building-type thresholds.csv

  # Write an XLSX workbook per table, reading LL84 from Postgres
  ll97 build --ll97-dataset ll97.csv \
    --ll84-query 'SELECT * FROM ll84_benchmarking' \
    --carbon-emissions-by-building-type thresholds.yaml \
    --format xlsx --output-dir out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, a)
		},
	}

	addInputFlags(cmd.Flags())
	cmd.Flags().String("output-dir", "", "directory the output tables are written to")
	cmd.Flags().String("format", "", "output format: csv, xlsx or json")

	return cmd
}

func runBuild(cmd *cobra.Command, a *app) error {
	keys := inputFlagKeys()
	keys["output-dir"] = config.KeyOutputDir
	keys["format"] = config.KeyOutputFormat

	cfg, err := a.load(cmd, keys)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBuild(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	writer, err := export.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	// stdout carries the summary only
	log := a.logger(cfg, cmd.ErrOrStderr()).WithRunID(uuid.NewString())
	log.Info("Starting build", map[string]interface{}{
		"version": Version,
		"format":  writer.Format(),
		"output":  cfg.Output.Dir,
		"workers": cfg.Build.Workers,
	})

	ctx := cmd.Context()
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	report, err := buildDataset(ctx, cfg, db, log)
	if err != nil {
		log.Error("Build failed", err, nil)
		return err
	}

	var paths []string
	for _, table := range report.Result.Tables() {
		path, err := export.WriteTable(cfg.Output.Dir, writer, table)
		if err != nil {
			log.Error("Export failed", err, map[string]interface{}{
				"table": table.Name,
			})
			return err
		}
		log.Info("Table written", map[string]interface{}{
			"path":    path,
			"rows":    table.Len(),
			"columns": len(table.Header),
		})
		paths = append(paths, path)
	}

	printSummary(cmd.OutOrStdout(), report, paths)
	return nil
}

// printSummary writes a human-readable report of the build.
func printSummary(w io.Writer, report *buildReport, paths []string) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Projected %d buildings in %v\n", report.Result.Records(), report.Result.Duration.Round(time.Millisecond))
	p.Fprintf(w, "  matched with benchmarking data: %d\n", report.Join.Matched)
	p.Fprintf(w, "  without benchmarking data:      %d\n", report.Join.Unmatched)
	if report.Join.DuplicateSecondary > 0 {
		p.Fprintf(w, "  duplicate benchmarking rows dropped: %d\n", report.Join.DuplicateSecondary)
	}
	if report.UnknownCategories > 0 {
		p.Fprintf(w, "  building type without emissions limits: %d\n", report.UnknownCategories)
	}

	for _, total := range periodTotals(report.Result.Projections) {
		p.Fprintf(w, "%-9s per year: %.1f tCO2e, $%.0f energy cost, $%.0f estimated penalty\n",
			total.Label, total.CarbonEmissions, total.CostOfEnergy, total.EstimatedPenalty)
	}

	for _, path := range paths {
		p.Fprintf(w, "Wrote %s\n", path)
	}
}

// periodTotals sums the per-year period averages of every building.
func periodTotals(projections []models.Projection) []models.PeriodMetrics {
	var totals []models.PeriodMetrics
	for _, p := range projections {
		if totals == nil {
			totals = make([]models.PeriodMetrics, len(p.Periods))
			for i, pm := range p.Periods {
				totals[i] = models.PeriodMetrics{Period: pm.Period, Label: pm.Label}
			}
		}
		for i, pm := range p.Periods {
			totals[i].Metrics = totals[i].Metrics.Add(pm.Metrics)
		}
	}
	return totals
}
