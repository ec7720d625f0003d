package dataset

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/ll97/internal/calculator"
	"github.com/stwalsh4118/ll97/internal/logger"
	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/models"
)

// Output table base names. Writers append the format extension.
const (
	YearlyTableName = "dataset_estimated_emissions_cost_penalties_for_each_year"
	PeriodTableName = "dataset_estimated_emissions_cost_penalties_for_year_range"
)

// YearColumn names the column holding metric for year, e.g. "2024_carbon_emissions".
func YearColumn(year int, metric string) string {
	return fmt.Sprintf("%d_%s", year, metric)
}

// PeriodColumn names the per-year average column for a period label,
// e.g. "2024-2029_carbon_emissions_per_year".
func PeriodColumn(label, metric string) string {
	return fmt.Sprintf("%s_%s_per_year", label, metric)
}

// Builder computes the projection tables from a joined, cleansed table.
type Builder struct {
	lookups calculator.Lookups
	workers int
	log     *logger.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers bounds the number of records computed concurrently.
// Values below 1 fall back to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger used for progress reporting.
func WithLogger(log *logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder creates a Builder over the shared lookup tables.
func NewBuilder(lookups calculator.Lookups, opts ...Option) *Builder {
	b := &Builder{
		lookups: lookups,
		workers: runtime.NumCPU(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Workers returns the configured worker bound.
func (b *Builder) Workers() int {
	return b.workers
}

// Lookups returns the lookup tables the builder computes with.
func (b *Builder) Lookups() calculator.Lookups {
	return b.lookups
}

// Result holds the materialized output of one build.
type Result struct {
	Yearly      *models.Table
	Periods     *models.Table
	Projections []models.Projection
	Duration    time.Duration
}

// Tables returns the output tables in write order.
func (r *Result) Tables() []*models.Table {
	return []*models.Table{r.Yearly, r.Periods}
}

// Records returns the number of building records projected.
func (r *Result) Records() int {
	return len(r.Projections)
}

// BuildRecord computes the projection for one row of the joined table.
func (b *Builder) BuildRecord(joined *models.Table, row int) models.Projection {
	return b.lookups.Project(calculator.RecordFromRow(joined, row))
}

// Build projects every record of joined and materializes both output tables.
// Each output table is the joined table followed by the generated metric
// columns; row order matches joined. The joined table is not modified.
func (b *Builder) Build(ctx context.Context, joined *models.Table) (*Result, error) {
	start := time.Now()
	projections := make([]models.Projection, joined.Len())

	b.log.Debug("Projecting building records", map[string]interface{}{
		"records": joined.Len(),
		"workers": b.workers,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := 0; i < joined.Len(); i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			projections[i] = b.BuildRecord(joined, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.ObserveBuild(metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to project records: %w", err)
	}
	// The loop above stops scheduling once ctx is done without an error from any worker.
	if err := ctx.Err(); err != nil {
		metrics.ObserveBuild(metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to project records: %w", err)
	}

	result := &Result{
		Yearly:      b.yearlyTable(joined, projections),
		Periods:     b.periodTable(joined, projections),
		Projections: projections,
		Duration:    time.Since(start),
	}

	metrics.ObserveBuild(metrics.ResultSuccess, result.Duration)
	metrics.AddBuildRecords(result.Records())

	b.log.Info("Projection tables built", map[string]interface{}{
		"records":        result.Records(),
		"yearly_columns": len(result.Yearly.Header),
		"period_columns": len(result.Periods.Header),
		"duration_ms":    result.Duration.Milliseconds(),
	})
	return result, nil
}

// YearlyColumns returns the generated per-year column names in output order.
func (b *Builder) YearlyColumns() []string {
	start, end := b.lookups.HorizonStart(), b.lookups.HorizonEnd()
	cols := make([]string, 0, (end-start+1)*len(models.MetricNames))
	for year := start; year <= end; year++ {
		for _, metric := range models.MetricNames {
			cols = append(cols, YearColumn(year, metric))
		}
	}
	return cols
}

// PeriodColumns returns the generated per-period column names in output order.
func (b *Builder) PeriodColumns() []string {
	periods := models.CompliancePeriods()
	cols := make([]string, 0, len(periods)*len(models.MetricNames))
	for _, p := range periods {
		for _, metric := range models.MetricNames {
			cols = append(cols, PeriodColumn(p.Label(), metric))
		}
	}
	return cols
}

func (b *Builder) yearlyTable(joined *models.Table, projections []models.Projection) *models.Table {
	header := append(append([]string(nil), joined.Header...), b.YearlyColumns()...)
	rows := make([][]string, len(projections))
	for i, p := range projections {
		row := make([]string, 0, len(header))
		row = append(row, joined.Rows[i]...)
		for _, ym := range p.Yearly {
			row = appendMetrics(row, ym.Metrics)
		}
		rows[i] = row
	}
	return models.NewTable(YearlyTableName, header, rows)
}

func (b *Builder) periodTable(joined *models.Table, projections []models.Projection) *models.Table {
	header := append(append([]string(nil), joined.Header...), b.PeriodColumns()...)
	rows := make([][]string, len(projections))
	for i, p := range projections {
		row := make([]string, 0, len(header))
		row = append(row, joined.Rows[i]...)
		for _, pm := range p.Periods {
			row = appendMetrics(row, pm.Metrics)
		}
		rows[i] = row
	}
	return models.NewTable(PeriodTableName, header, rows)
}

func appendMetrics(row []string, m models.Metrics) []string {
	for _, v := range m.Values() {
		row = append(row, calculator.FormatNumber(v))
	}
	return row
}
