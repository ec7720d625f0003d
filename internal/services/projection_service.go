package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/ll97/internal/calculator"
	"github.com/stwalsh4118/ll97/internal/dataset"
	"github.com/stwalsh4118/ll97/internal/logger"
	"github.com/stwalsh4118/ll97/internal/models"
)

// Service-level errors
var (
	ErrInvalidBuildingKey = errors.New("invalid building key")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrInvalidYearRange   = errors.New("invalid year range")
	ErrDatasetNotReady    = errors.New("dataset not ready")
)

// BuildingIndex is the read-only store the service queries.
type BuildingIndex interface {
	Lookup(key string) (models.Projection, bool)
	Len() int
	Projections() []models.Projection
}

// readiness is implemented by indexes that can be queried before they are loaded.
type readiness interface {
	Ready() bool
}

// BuildingSummary describes one building record.
type BuildingSummary struct {
	Key         string             `json:"bbl"`
	Category    *string            `json:"category"`
	FloorArea   float64            `json:"floor_area"`
	Readings    map[string]float64 `json:"readings"`
	Consumption map[string]float64 `json:"consumption"`
}

// YearTotal is the portfolio-wide sum of one year's metrics.
type YearTotal struct {
	models.Metrics
	Year                   int `json:"year"`
	BuildingsOverThreshold int `json:"buildings_over_threshold"`
}

// PortfolioSummary aggregates every building in the dataset.
type PortfolioSummary struct {
	Records int         `json:"records"`
	Years   []YearTotal `json:"years"`
}

// ProjectionService defines the business operations behind the HTTP API.
// Every operation returns ErrDatasetNotReady while the index is still loading.
type ProjectionService interface {
	// GetBuilding returns the record behind a raw BBL.
	// Returns ErrInvalidBuildingKey if the key is empty after normalization.
	// Returns ErrBuildingNotFound if no record has the key.
	GetBuilding(ctx context.Context, rawKey string) (*BuildingSummary, error)

	// GetYearlyProjections returns the per-year metrics for [from, to].
	// Returns ErrInvalidYearRange if the range is reversed or leaves the horizon.
	GetYearlyProjections(ctx context.Context, rawKey string, from, to int) ([]models.YearMetrics, error)

	// GetPeriodProjections returns the per-year averages of every compliance period.
	GetPeriodProjections(ctx context.Context, rawKey string) ([]models.PeriodMetrics, error)

	// Summary totals every metric across the dataset per year.
	Summary(ctx context.Context) (*PortfolioSummary, error)
}

// projectionService is the concrete implementation of ProjectionService.
type projectionService struct {
	index BuildingIndex
	log   *logger.Logger
}

// NewProjectionService creates a new instance of ProjectionService.
func NewProjectionService(index BuildingIndex, log *logger.Logger) ProjectionService {
	return &projectionService{
		index: index,
		log:   log,
	}
}

func (s *projectionService) ready() error {
	if r, ok := s.index.(readiness); ok && !r.Ready() {
		return ErrDatasetNotReady
	}
	return nil
}

func (s *projectionService) find(rawKey string) (models.Projection, error) {
	if err := s.ready(); err != nil {
		return models.Projection{}, err
	}

	key := dataset.NormalizeKey(rawKey)
	if key == "" {
		s.log.Warn("Invalid building key provided", map[string]interface{}{
			"raw_key": rawKey,
		})
		return models.Projection{}, fmt.Errorf("%w: %q", ErrInvalidBuildingKey, rawKey)
	}

	projection, ok := s.index.Lookup(key)
	if !ok {
		s.log.Debug("No building found for key", map[string]interface{}{
			"bbl": key,
		})
		return models.Projection{}, ErrBuildingNotFound
	}
	return projection, nil
}

// GetBuilding retrieves the building record for a raw BBL.
func (s *projectionService) GetBuilding(ctx context.Context, rawKey string) (*BuildingSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projection, err := s.find(rawKey)
	if err != nil {
		return nil, err
	}

	rec := projection.Record
	return &BuildingSummary{
		Key:         rec.Key,
		Category:    rec.Category,
		FloorArea:   rec.FloorArea,
		Readings:    rec.Readings.Map(),
		Consumption: calculator.Normalize(rec.Readings).Map(),
	}, nil
}

// GetYearlyProjections retrieves per-year metrics within the inclusive range.
func (s *projectionService) GetYearlyProjections(ctx context.Context, rawKey string, from, to int) ([]models.YearMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from > to || from < models.HorizonStartYear || to > models.HorizonEndYear {
		s.log.Warn("Invalid year range provided", map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return nil, fmt.Errorf("%w: years must satisfy %d <= from <= to <= %d, got %d-%d",
			ErrInvalidYearRange, models.HorizonStartYear, models.HorizonEndYear, from, to)
	}

	projection, err := s.find(rawKey)
	if err != nil {
		return nil, err
	}

	years := make([]models.YearMetrics, 0, to-from+1)
	for _, ym := range projection.Yearly {
		if ym.Year >= from && ym.Year <= to {
			years = append(years, ym)
		}
	}

	s.log.Info("Yearly projections served", map[string]interface{}{
		"bbl":   projection.Record.Key,
		"from":  from,
		"to":    to,
		"count": len(years),
	})
	return years, nil
}

// GetPeriodProjections retrieves the compliance period averages for a building.
func (s *projectionService) GetPeriodProjections(ctx context.Context, rawKey string) ([]models.PeriodMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projection, err := s.find(rawKey)
	if err != nil {
		return nil, err
	}
	return projection.Periods, nil
}

// Summary totals the per-year metrics of every building.
func (s *projectionService) Summary(ctx context.Context) (*PortfolioSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	byYear := make(map[int]*YearTotal)
	var order []int
	for _, p := range s.index.Projections() {
		for _, ym := range p.Yearly {
			total, ok := byYear[ym.Year]
			if !ok {
				total = &YearTotal{Year: ym.Year}
				byYear[ym.Year] = total
				order = append(order, ym.Year)
			}
			total.Metrics = total.Metrics.Add(ym.Metrics)
			if ym.EstimatedPenalty > 0 {
				total.BuildingsOverThreshold++
			}
		}
	}

	summary := &PortfolioSummary{
		Records: s.index.Len(),
		Years:   make([]YearTotal, 0, len(order)),
	}
	for _, year := range order {
		summary.Years = append(summary.Years, *byYear[year])
	}
	return summary, nil
}
