package cli

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/ll97/internal/calculator"
	"github.com/stwalsh4118/ll97/internal/config"
	"github.com/stwalsh4118/ll97/internal/database"
	"github.com/stwalsh4118/ll97/internal/dataset"
	"github.com/stwalsh4118/ll97/internal/logger"
	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/models"
	"github.com/stwalsh4118/ll97/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Source names used in logs, metrics and table names.
const (
	primarySource   = "ll97"
	secondarySource = "ll84"
)

// buildReport is everything one run of the pipeline produced.
type buildReport struct {
	Result            *dataset.Result
	Join              dataset.JoinStats
	Cleanse           dataset.CleanseStats
	Categories        int
	UnknownCategories int
}

// openDatabase connects to Postgres when any source is a query; otherwise it returns nil.
func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.Database, error) {
	if !cfg.RequiresDatabase() {
		return nil, nil
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})
	return db, nil
}

// buildDataset loads the thresholds and both sources, joins and cleanses
// them and projects every record. db may be nil when both sources are files.
func buildDataset(ctx context.Context, cfg *config.Config, db *database.Database, log *logger.Logger) (*buildReport, error) {
	thresholds, err := calculator.LoadThresholds(cfg.Input.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	log.Debug("Emissions limits loaded", map[string]interface{}{
		"path":       cfg.Input.ThresholdsFile,
		"categories": thresholds.Categories(),
	})

	sources := repository.Sources{Files: repository.NewFileRepository()}
	if db != nil {
		sources.Queries = repository.NewPostgresRepository(db)
	}

	specs := [2]repository.SourceSpec{
		{Name: primarySource, Path: cfg.Input.PrimaryDataset, Query: cfg.Input.PrimaryQuery},
		{Name: secondarySource, Path: cfg.Input.SecondaryDataset, Query: cfg.Input.SecondaryQuery},
	}
	var tables [2]*models.Table

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			t, err := sources.Load(gctx, spec)
			if err != nil {
				return err
			}
			log.Info("Source loaded", map[string]interface{}{
				"source": spec.Name,
				"from":   spec.Describe(),
				"rows":   t.Len(),
			})
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined, stats, err := dataset.Join(tables[0], tables[1], dataset.JoinOptions{
		PrimaryKey:   cfg.Input.PrimaryKey,
		SecondaryKey: cfg.Input.SecondaryKey,
		Name:         "joined",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join sources: %w", err)
	}
	metrics.AddJoinDuplicates(primarySource, stats.DuplicatePrimary)
	metrics.AddJoinDuplicates(secondarySource, stats.DuplicateSecondary)

	if stats.DuplicateSecondary > 0 {
		log.Warn("Duplicate benchmarking rows dropped", map[string]interface{}{
			"duplicates": stats.DuplicateSecondary,
		})
	}
	if stats.DuplicatePrimary > 0 {
		log.Warn("Covered buildings list repeats keys", map[string]interface{}{
			"duplicates": stats.DuplicatePrimary,
		})
	}
	log.Info("Sources joined", map[string]interface{}{
		"records":         joined.Len(),
		"matched":         stats.Matched,
		"unmatched":       stats.Unmatched,
		"renamed_columns": len(stats.RenamedColumns),
	})

	cleansed := dataset.Cleanse(joined)
	log.Debug("Numeric columns cleansed", map[string]interface{}{
		"coerced":       cleansed.Coerced,
		"added_columns": cleansed.AddedColumns,
	})

	builder := dataset.NewBuilder(
		calculator.NewLookups(thresholds),
		dataset.WithWorkers(cfg.Build.Workers),
		dataset.WithLogger(log),
	)
	result, err := builder.Build(ctx, joined)
	if err != nil {
		return nil, err
	}

	report := &buildReport{
		Result:     result,
		Join:       stats,
		Cleanse:    cleansed,
		Categories: thresholds.Categories(),
	}
	for _, p := range result.Projections {
		if p.Record.Category != nil && !thresholds.Has(*p.Record.Category) {
			report.UnknownCategories++
		}
	}
	if report.UnknownCategories > 0 {
		// Such records get no emissions limit, so their whole footprint is penalized.
		log.Warn("Records with a building type missing from the emissions limits", map[string]interface{}{
			"records": report.UnknownCategories,
		})
	}

	return report, nil
}
