package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/middleware"
	"fincleaner/internal/services"
	"fincleaner/internal/table"
)

// SaveRequest is the body of POST /api/save. An empty path means the
// configured output location; any other path is taken relative to the
// handler's save directory.
type SaveRequest struct {
	Path string `json:"path" validate:"omitempty,datafile"`
}

// ColumnInfo describes one column of a table response
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// TableResponse is the JSON form of a table: numbers as JSON numbers, text as
// strings, absent cells as null.
type TableResponse struct {
	Columns []ColumnInfo    `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// DatasetHandler handles the cleaning and analysis endpoints
type DatasetHandler struct {
	service      DatasetServiceInterface
	saveDir      string
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler. Save requests write under
// saveDir.
func NewDatasetHandler(service DatasetServiceInterface, saveDir string, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{
		service:      service,
		saveDir:      saveDir,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/clean", h.Clean)
	r.Get("/table", h.GetTable)
	r.With(h.validator.ValidateRequest).Post("/save", h.Save)

	r.Get("/distribution", h.GetDistribution)
	r.Get("/totals", h.GetTotals)
	r.Get("/compare", h.GetComparison)
	r.Get("/metric", h.GetMetric)
	r.Get("/groups", h.GetGroups)
	return r
}

// Clean handles POST /api/clean
func (h *DatasetHandler) Clean(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Clean(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset cleaned",
		slog.String("run_id", report.RunID),
		slog.Int("cells_filled", report.CellsFilled))
	render.JSON(w, r, report)
}

// GetTable handles GET /api/table
func (h *DatasetHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Table(r.Context())
	if apierrors.IsType(err, apierrors.ErrTypePrecondition) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNotCleaned)
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, NewTableResponse(t))
}

// Save handles POST /api/save
func (h *DatasetHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// the validator only lets local paths through, so the join stays in saveDir
	if req.Path != "" {
		req.Path = filepath.Join(h.saveDir, req.Path)
	}

	path, err := h.service.Save(r.Context(), req.Path)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "saved",
		"path":   path,
	})
}

// GetDistribution handles GET /api/distribution
func (h *DatasetHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dist, err := h.service.Distribution(r.Context(), services.DistributionQuery{
		FilterColumn: q.Get("filter_column"),
		FilterValue:  q.Get("filter_value"),
		Exclude:      listParam(r, "exclude"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"data":  dist,
		"count": len(dist),
	})
}

// GetTotals handles GET /api/totals
func (h *DatasetHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	totals, err := h.service.Totals(r.Context(), services.TotalsQuery{
		By:           q.Get("by"),
		FilterColumn: q.Get("filter_column"),
		FilterValue:  q.Get("filter_value"),
		Exclude:      listParam(r, "exclude"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"data":  totals,
		"count": len(totals),
	})
}

// GetComparison handles GET /api/compare
func (h *DatasetHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmp, err := h.service.Compare(r.Context(), services.CompareQuery{
		GroupColumn:  q.Get("group_column"),
		By:           q.Get("by"),
		First:        q.Get("first"),
		Second:       q.Get("second"),
		FilterColumn: q.Get("filter_column"),
		FilterValue:  q.Get("filter_value"),
		Exclude:      listParam(r, "exclude"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cmp)
}

// GetMetric handles GET /api/metric
func (h *DatasetHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmp, err := h.service.CompareMetric(r.Context(), services.MetricQuery{
		EntityColumn: q.Get("entity_column"),
		Metric:       q.Get("metric"),
		First:        q.Get("first"),
		Second:       q.Get("second"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cmp)
}

// GetGroups handles GET /api/groups
func (h *DatasetHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Groups(r.Context(), r.URL.Query().Get("column"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"data":  groups,
		"count": len(groups),
	})
}

// NewTableResponse converts t to its JSON form
func NewTableResponse(t *table.Table) TableResponse {
	resp := TableResponse{
		Columns: make([]ColumnInfo, 0, t.NumCols()),
		Rows:    make([][]interface{}, 0, t.NumRows()),
	}
	for _, c := range t.Columns() {
		resp.Columns = append(resp.Columns, ColumnInfo{Name: c.Name, Kind: c.Kind().String()})
	}
	for _, row := range t.Rows() {
		out := make([]interface{}, len(row))
		for i, v := range row {
			switch v.Kind() {
			case table.KindNumber:
				out[i] = json.Number(v.String())
			case table.KindText:
				out[i] = v.Str()
			}
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}

// listParam splits a comma-separated parameter. A missing parameter is nil,
// so the service falls back to its defaults; an empty one is an empty list.
func listParam(r *http.Request, name string) []string {
	values, ok := r.URL.Query()[name]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
