package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/charts"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	exportService *services.ExportService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SummaryResponse is the body of GET /api/summary
type SummaryResponse struct {
	Range   models.DateRange  `json:"range"`
	Summary aggregate.Summary `json:"summary"`
}

// ChartsResponse is the body of GET /api/charts
type ChartsResponse struct {
	Range  models.DateRange `json:"range"`
	Charts []charts.Chart   `json:"charts"`
}

// ChartResponse is the body of GET /api/charts/{id}
type ChartResponse struct {
	Range models.DateRange `json:"range"`
	Chart charts.Chart     `json:"chart"`
}

// GetRange handles GET /api/range
func (h *DashboardHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/range"
	defer h.observe(endpoint, time.Now())

	rng, err := h.dashboardService.DefaultRange(r.Context())
	if err != nil {
		h.sourceError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, rng, http.StatusOK)
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/dashboard"
	defer h.observe(endpoint, time.Now())

	d, ok := h.dashboard(w, r, endpoint)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, d, http.StatusOK)
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/summary"
	defer h.observe(endpoint, time.Now())

	d, ok := h.dashboard(w, r, endpoint)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, SummaryResponse{Range: d.Range, Summary: d.Summary}, http.StatusOK)
}

// GetCharts handles GET /api/charts
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/charts"
	defer h.observe(endpoint, time.Now())

	d, ok := h.dashboard(w, r, endpoint)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, ChartsResponse{Range: d.Range, Charts: charts.Build(d)}, http.StatusOK)
}

// GetChart handles GET /api/charts/{id}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/charts/{id}"
	defer h.observe(endpoint, time.Now())

	id := mux.Vars(r)["id"]

	d, ok := h.dashboard(w, r, endpoint)
	if !ok {
		return
	}

	chart, found := charts.ByID(d, id)
	if !found {
		h.metrics.RecordAPIError("not_found", endpoint)
		h.sendError(w, r, endpoint, fmt.Sprintf("unknown chart %q", id), http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, ChartResponse{Range: d.Range, Chart: chart}, http.StatusOK)
}

// ExportWorkbook handles GET /api/export.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/export.xlsx"
	defer h.observe(endpoint, time.Now())

	d, ok := h.dashboard(w, r, endpoint)
	if !ok {
		return
	}

	f, err := h.exportService.Workbook(d)
	if err != nil {
		h.logger.Error(r.Context(), "[API_EXPORT_ERROR] Failed to build workbook", logging.Fields{
			"range": d.Range.Key(),
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, endpoint, "failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("bikeshare_%s_%s.xlsx",
		d.Range.Start.Format(models.DateLayout), d.Range.End.Format(models.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")

	if _, err := f.WriteTo(w); err != nil {
		h.logger.Warn(r.Context(), "[API_EXPORT_WRITE_ERROR] Workbook download interrupted", logging.Fields{
			"error": err.Error(),
		})
	}
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.dashboardService.HealthCheck(ctx); err != nil {
		status["status"] = "unhealthy"
		status["error"] = err.Error()
		code = http.StatusServiceUnavailable
		h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Record source unavailable", logging.Fields{
			"error": err.Error(),
		})
	} else {
		h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	}

	h.sendJSON(w, status, code)
}

// dashboard resolves the request's date range and recomputes. On failure
// the error response has already been written.
func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request, endpoint string) (aggregate.Dashboard, bool) {
	ctx := r.Context()

	start, err := parseDateParam(r, "start")
	if err != nil {
		h.metrics.RecordAPIError("bad_request", endpoint)
		h.sendError(w, r, endpoint, err.Error(), http.StatusBadRequest)
		return aggregate.Dashboard{}, false
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		h.metrics.RecordAPIError("bad_request", endpoint)
		h.sendError(w, r, endpoint, err.Error(), http.StatusBadRequest)
		return aggregate.Dashboard{}, false
	}

	rng, err := h.dashboardService.ResolveRange(ctx, start, end)
	if err != nil {
		h.sourceError(w, r, endpoint, err)
		return aggregate.Dashboard{}, false
	}

	d, err := h.dashboardService.Dashboard(ctx, rng)
	if err != nil {
		h.sourceError(w, r, endpoint, err)
		return aggregate.Dashboard{}, false
	}
	return d, true
}

// parseDateParam reads an optional YYYY-MM-DD query parameter
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format, expected YYYY-MM-DD", name)
	}
	return &t, nil
}

func (h *DashboardHandler) sourceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	if errors.Is(err, dataset.ErrEmptyDataset) {
		h.metrics.RecordAPIError("no_data", endpoint)
		h.sendError(w, r, endpoint, "no usage records loaded", http.StatusServiceUnavailable)
		return
	}

	h.logger.Error(r.Context(), "[API_SOURCE_ERROR] Failed to read usage records", logging.Fields{
		"endpoint": endpoint,
	}, err)
	h.metrics.RecordAPIError("internal_error", endpoint)
	h.sendError(w, r, endpoint, "failed to compute dashboard", http.StatusInternalServerError)
}

func (h *DashboardHandler) observe(endpoint string, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/range", h.GetRange).Methods("GET")
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/charts", h.GetCharts).Methods("GET")
	router.HandleFunc("/api/charts/{id}", h.GetChart).Methods("GET")
	router.HandleFunc("/api/export.xlsx", h.ExportWorkbook).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/", DashboardPage).Methods("GET")
}
