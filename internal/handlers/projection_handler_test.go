package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/ll97/internal/dataset"
	apierrors "github.com/stwalsh4118/ll97/internal/errors"
	"github.com/stwalsh4118/ll97/internal/logger"
	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/models"
	"github.com/stwalsh4118/ll97/internal/services"
)

// MockProjectionService is a mock implementation of services.ProjectionService for testing
type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) GetBuilding(ctx context.Context, rawKey string) (*services.BuildingSummary, error) {
	args := m.Called(ctx, rawKey)
	building, _ := args.Get(0).(*services.BuildingSummary)
	return building, args.Error(1)
}

func (m *MockProjectionService) GetYearlyProjections(ctx context.Context, rawKey string, from, to int) ([]models.YearMetrics, error) {
	args := m.Called(ctx, rawKey, from, to)
	years, _ := args.Get(0).([]models.YearMetrics)
	return years, args.Error(1)
}

func (m *MockProjectionService) GetPeriodProjections(ctx context.Context, rawKey string) ([]models.PeriodMetrics, error) {
	args := m.Called(ctx, rawKey)
	periods, _ := args.Get(0).([]models.PeriodMetrics)
	return periods, args.Error(1)
}

func (m *MockProjectionService) Summary(ctx context.Context) (*services.PortfolioSummary, error) {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(*services.PortfolioSummary)
	return summary, args.Error(1)
}

// setupProjectionTestRouter creates the full API router around a mock service.
func setupProjectionTestRouter(service services.ProjectionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.Init()

	return NewRouter(RouterConfig{
		Log:         logger.New("test"),
		CORSOrigins: []string{"http://localhost:3000"},
		Health:      NewHealthHandler(nil, loadedStore(1), "test"),
		Projections: NewProjectionHandler(service),
	})
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestGetBuilding_Success(t *testing.T) {
	// Arrange
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)
	category := "Office"

	mockService.On("GetBuilding", mock.Anything, "1-00001-0001").Return(&services.BuildingSummary{
		Key:         "1000010001",
		Category:    &category,
		FloorArea:   1000,
		Readings:    map[string]float64{"Electricity": 1000},
		Consumption: map[string]float64{"Electricity": 1},
	}, nil)

	// Act
	w := serve(router, "/api/v1/buildings/1-00001-0001")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response BuildingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Building)
	assert.Equal(t, "1000010001", response.Building.Key)
	assert.Equal(t, "Office", *response.Building.Category)
	assert.Equal(t, 1000.0, response.Building.FloorArea)
	mockService.AssertExpectations(t)
}

func TestGetBuilding_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            services.ErrBuildingNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
		{
			name:           "invalid key",
			err:            fmt.Errorf("%w: %q", services.ErrInvalidBuildingKey, "--"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "dataset still building",
			err:            services.ErrDatasetNotReady,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   apierrors.ErrServiceUnavailable,
		},
		{
			name:           "unexpected error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apierrors.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProjectionService)
			router := setupProjectionTestRouter(mockService)

			mockService.On("GetBuilding", mock.Anything, "123").Return(nil, tt.err)

			w := serve(router, "/api/v1/buildings/123")

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, response.Error.Code)
			assert.NotEmpty(t, response.Error.RequestID)
			// Internal details never reach the client
			assert.NotContains(t, response.Error.Message, "boom")
		})
	}
}

func TestProjections_DefaultsToFullHorizon(t *testing.T) {
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)

	years := make([]models.YearMetrics, 0, 27)
	for year := models.HorizonStartYear; year <= models.HorizonEndYear; year++ {
		years = append(years, models.YearMetrics{Year: year})
	}
	mockService.On("GetYearlyProjections", mock.Anything, "1000010001", 2024, 2050).Return(years, nil)

	w := serve(router, "/api/v1/buildings/1000010001/projections")

	assert.Equal(t, http.StatusOK, w.Code)
	var response ProjectionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "1000010001", response.BBL)
	assert.Equal(t, 27, response.Count)
	mockService.AssertExpectations(t)
}

func TestProjections_Range(t *testing.T) {
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)

	mockService.On("GetYearlyProjections", mock.Anything, "1-1-1", 2030, 2031).Return([]models.YearMetrics{
		{Year: 2030, Metrics: models.Metrics{CarbonEmissions: 1.5}},
		{Year: 2031, Metrics: models.Metrics{CarbonEmissions: 1.5}},
	}, nil)

	w := serve(router, "/api/v1/buildings/1-1-1/projections?from=2030&to=2031")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "111", body["bbl"])
	years := body["years"].([]interface{})
	require.Len(t, years, 2)
	// Metrics are flattened into each year entry
	first := years[0].(map[string]interface{})
	assert.Equal(t, 2030.0, first["year"])
	assert.Equal(t, 1.5, first["carbon_emissions"])
}

func TestProjections_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"from before horizon", "?from=2020", "From"},
		{"to after horizon", "?to=2051", "To"},
		{"reversed range", "?from=2040&to=2030", "To"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProjectionService)
			router := setupProjectionTestRouter(mockService)

			w := serve(router, "/api/v1/buildings/1/projections"+tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, apierrors.ErrValidation, response.Error.Code)
			assert.Contains(t, response.Error.Details, tt.field)
			mockService.AssertNotCalled(t, "GetYearlyProjections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProjections_NonNumericYear(t *testing.T) {
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)

	w := serve(router, "/api/v1/buildings/1/projections?from=soon")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, apierrors.ErrBadRequest, response.Error.Code)
}

func TestPeriods(t *testing.T) {
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)

	periods := make([]models.PeriodMetrics, 0, 5)
	for _, p := range models.CompliancePeriods() {
		periods = append(periods, models.PeriodMetrics{Period: p, Label: p.Label()})
	}
	mockService.On("GetPeriodProjections", mock.Anything, "1000010001").Return(periods, nil)

	w := serve(router, "/api/v1/buildings/1000010001/periods")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	got := body["periods"].([]interface{})
	require.Len(t, got, 5)
	assert.Equal(t, "2024-2029", got[0].(map[string]interface{})["period"])
	assert.Equal(t, "2050+", got[4].(map[string]interface{})["period"])
}

func TestSummary(t *testing.T) {
	mockService := new(MockProjectionService)
	router := setupProjectionTestRouter(mockService)

	mockService.On("Summary", mock.Anything).Return(&services.PortfolioSummary{
		Records: 2,
		Years: []services.YearTotal{
			{Year: 2024, Metrics: models.Metrics{EstimatedPenalty: 268}, BuildingsOverThreshold: 1},
		},
	}, nil)

	w := serve(router, "/api/v1/summary")

	assert.Equal(t, http.StatusOK, w.Code)
	var response services.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Records)
	require.Len(t, response.Years, 1)
	assert.Equal(t, 268.0, response.Years[0].EstimatedPenalty)
	assert.Equal(t, 1, response.Years[0].BuildingsOverThreshold)
}

func TestSummary_NotReady(t *testing.T) {
	// The real service over an empty store reports the dataset as loading
	service := services.NewProjectionService(dataset.NewStore(), logger.New("test"))
	router := setupProjectionTestRouter(service)

	w := serve(router, "/api/v1/summary")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	response := decodeError(t, w)
	assert.Equal(t, apierrors.ErrServiceUnavailable, response.Error.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := setupProjectionTestRouter(new(MockProjectionService))

	w := serve(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ll97_http_requests_total")
}
