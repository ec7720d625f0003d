package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/ll97/internal/dataset"
	apierrors "github.com/stwalsh4118/ll97/internal/errors"
	"github.com/stwalsh4118/ll97/internal/middleware"
	"github.com/stwalsh4118/ll97/internal/models"
	"github.com/stwalsh4118/ll97/internal/services"
)

// ProjectionHandler handles building and portfolio projection requests.
type ProjectionHandler struct {
	service services.ProjectionService
}

// NewProjectionHandler creates a new ProjectionHandler instance.
func NewProjectionHandler(service services.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{
		service: service,
	}
}

// YearRangeRequest represents the query parameters for the projections endpoint.
// Omitted bounds default to the full projection horizon.
type YearRangeRequest struct {
	From int `form:"from" binding:"omitempty,gte=2024,lte=2050"`
	To   int `form:"to" binding:"omitempty,gte=2024,lte=2050,gtefield=From"`
}

// BuildingResponse represents the response for the building endpoint.
type BuildingResponse struct {
	Building *services.BuildingSummary `json:"building"`
}

// ProjectionsResponse represents the response for the yearly projections endpoint.
type ProjectionsResponse struct {
	BBL   string               `json:"bbl"`
	Years []models.YearMetrics `json:"years"`
	Count int                  `json:"count"`
}

// PeriodsResponse represents the response for the compliance periods endpoint.
type PeriodsResponse struct {
	BBL     string                 `json:"bbl"`
	Periods []models.PeriodMetrics `json:"periods"`
}

// GetBuilding handles GET /api/v1/buildings/:bbl endpoint.
func (h *ProjectionHandler) GetBuilding(c *gin.Context) {
	building, err := h.service.GetBuilding(c.Request.Context(), c.Param("bbl"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to load building")
		return
	}

	c.JSON(http.StatusOK, BuildingResponse{Building: building})
}

// Projections handles GET /api/v1/buildings/:bbl/projections endpoint.
// It returns per-year metrics for the requested inclusive year range.
func (h *ProjectionHandler) Projections(c *gin.Context) {
	log := middleware.GetLogger(c)

	// Bind and validate query parameters
	var req YearRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		// Check if it's a validation error
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		// Generic bad request for other binding errors
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if req.From == 0 {
		req.From = models.HorizonStartYear
	}
	if req.To == 0 {
		req.To = models.HorizonEndYear
	}

	if log != nil {
		log.Debug("Processing projections request", map[string]interface{}{
			"from": req.From,
			"to":   req.To,
		})
	}

	years, err := h.service.GetYearlyProjections(c.Request.Context(), c.Param("bbl"), req.From, req.To)
	if err != nil {
		h.handleServiceError(c, err, "Failed to load projections")
		return
	}

	c.JSON(http.StatusOK, ProjectionsResponse{
		BBL:   dataset.NormalizeKey(c.Param("bbl")),
		Years: years,
		Count: len(years),
	})
}

// Periods handles GET /api/v1/buildings/:bbl/periods endpoint.
// It returns the per-year averages of every compliance period.
func (h *ProjectionHandler) Periods(c *gin.Context) {
	periods, err := h.service.GetPeriodProjections(c.Request.Context(), c.Param("bbl"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to load compliance periods")
		return
	}

	c.JSON(http.StatusOK, PeriodsResponse{
		BBL:     dataset.NormalizeKey(c.Param("bbl")),
		Periods: periods,
	})
}

// Summary handles GET /api/v1/summary endpoint.
// It returns portfolio-wide totals per year.
func (h *ProjectionHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to summarize dataset")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleServiceError maps service-level errors to API error responses.
func (h *ProjectionHandler) handleServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrInvalidBuildingKey), errors.Is(err, services.ErrInvalidYearRange):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrBuildingNotFound):
		apierrors.NotFound(c, "No building found for this BBL")
	case errors.Is(err, services.ErrDatasetNotReady):
		apierrors.DatasetLoading(c)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apierrors.ServiceUnavailable(c, "Request cancelled")
	default:
		apierrors.InternalServerError(c, message, err)
	}
}
