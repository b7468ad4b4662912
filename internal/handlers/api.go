package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"hanami-dashboard/internal/analytics"
	"hanami-dashboard/internal/dashboard"
	"hanami-dashboard/internal/errors"
	"hanami-dashboard/internal/export"
	"hanami-dashboard/internal/models"
	"hanami-dashboard/internal/normalize"
	"hanami-dashboard/internal/observability"
)

const (
	defaultSalesLimit = 100
	maxUploadBytes    = 64 << 20
	cacheControl      = "public, max-age=300"
)

var cacheHeaders = map[string]string{"Cache-Control": cacheControl}

type API struct {
	data   *analytics.Dataset
	dash   *dashboard.Service
	logger *slog.Logger

	// exporting is the single in-flight export guard: concurrent export
	// requests are rejected, not queued.
	exporting atomic.Bool
}

func NewAPI(data *analytics.Dataset, dash *dashboard.Service, logger *slog.Logger) *API {
	return &API{
		data:   data,
		dash:   dash,
		logger: logger,
	}
}

// parseFilter reads the shared start_date/end_date/region query
// parameters every report endpoint accepts.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	var f analytics.Filter
	q := r.URL.Query()

	f.Region = strings.TrimSpace(q.Get("region"))
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errors.BadRequestWrap(err, "invalid start_date, expected YYYY-MM-DD")
		}
		f.Start = t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errors.BadRequestWrap(err, "invalid end_date, expected YYYY-MM-DD")
		}
		f.End = t
	}
	return f, nil
}

// filtered applies the request filter to the current dataset, reporting
// whether any condition was active.
func (h *API) filtered(w http.ResponseWriter, r *http.Request) ([]models.SalesRecord, bool, bool) {
	f, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return nil, false, false
	}
	return f.Apply(h.data.Records()), f.Active(), true
}

func (h *API) HandleSales(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultSalesLimit)
	offset := queryInt(r, "offset", 0)

	page, total := h.data.Page(limit, offset)
	errors.WriteJSON(w, map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"data":   page,
	})
}

func (h *API) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.Summarize(records), cacheHeaders)
}

func (h *API) HandleSalesByMonth(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.MonthlySales(records), cacheHeaders)
}

func (h *API) HandleSalesByCategory(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.SalesByCategory(records), cacheHeaders)
}

func (h *API) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", analytics.TopLimit)
	errors.WriteJSONWithHeaders(w, analytics.TopProducts(records, limit), cacheHeaders)
}

func (h *API) HandleCustomersByGender(w http.ResponseWriter, r *http.Request) {
	records, active, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.CustomersByGender(records, flavor(active)), cacheHeaders)
}

func (h *API) HandleSalesByState(w http.ResponseWriter, r *http.Request) {
	records, active, ok := h.filtered(w, r)
	if !ok {
		return
	}
	// The unfiltered ranking truncates to the top 10; a filtered view
	// returns every state.
	limit := analytics.TopLimit
	if active {
		limit = 0
	}
	errors.WriteJSONWithHeaders(w, analytics.SalesByState(records, limit), cacheHeaders)
}

func (h *API) HandlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.PaymentMethods(records), cacheHeaders)
}

func (h *API) HandleCustomersByAge(w http.ResponseWriter, r *http.Request) {
	records, active, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.CustomersByAge(records, flavor(active)), cacheHeaders)
}

func (h *API) HandleInstallments(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.Installments(records), cacheHeaders)
}

func (h *API) HandleDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	records, active, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.DeliveryStatus(records, flavor(active)), cacheHeaders)
}

func (h *API) HandleProductRatings(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.ProductRatings(records, analytics.TopLimit), cacheHeaders)
}

func (h *API) HandleAverageDeliveryTime(w http.ResponseWriter, r *http.Request) {
	records, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteJSONWithHeaders(w, analytics.AverageDeliveryTime(records), cacheHeaders)
}

// HandleDashboard returns the reconciled local/upstream report in one
// response.
func (h *API) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteJSON(w, h.dash.Report(r.Context(), f))
}

// HandleUpload replaces the dataset from a multipart file. The file type
// is validated before anything is read.
func (h *API) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid multipart form"), requestID)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "missing form field 'file'"), requestID)
		return
	}
	defer file.Close()

	var records []models.SalesRecord
	var stats normalize.Stats

	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".csv":
		raw, err := io.ReadAll(file)
		if err != nil {
			errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to read upload"), requestID)
			return
		}
		records, stats = normalize.ParseCSV(string(raw))
	case ".xlsx", ".xls":
		records, stats, err = export.ReadExcel(file)
		if err != nil {
			errors.WriteError(w, h.logger, errors.ValidationWrap(err, "could not read spreadsheet"), requestID)
			return
		}
	default:
		errors.WriteError(w, h.logger,
			errors.Validation(fmt.Sprintf("unsupported file type %q, expected .csv, .xlsx or .xls", ext)),
			requestID)
		return
	}

	if len(records) == 0 {
		errors.WriteError(w, h.logger, errors.Validation("file contains no valid records"), requestID)
		return
	}

	h.data.SetRecords(records, header.Filename)
	h.logger.Info("dataset replaced by upload",
		"filename", header.Filename,
		"records", stats.Rows,
		"skipped", stats.Skipped,
		"request_id", requestID,
	)

	errors.WriteJSON(w, map[string]any{
		"records": stats.Rows,
		"skipped": stats.Skipped,
	})
}

func (h *API) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, "csv")
}

func (h *API) HandleExportExcel(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, "xlsx")
}

func (h *API) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	requestID := observability.GetRequestID(r.Context())

	if !h.exporting.CompareAndSwap(false, true) {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("an export is already in progress"), requestID)
		return
	}
	defer h.exporting.Store(false)

	f, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	records := f.Apply(h.data.Records())

	filename := fmt.Sprintf("relatorio_vendas_%d.%s", time.Now().UnixMilli(), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, records)
	default:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteExcel(w, records)
	}
	if err != nil {
		// Headers are gone by now; the broken download is all we can log.
		h.logger.Error("export failed", "format", format, "error", err, "request_id", requestID)
	}
}

func (h *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, h.data.Stats())
}

// flavor picks the metric weighting per dashboard variant: the filtered
// view is revenue-weighted, the raw view counts records.
func flavor(filterActive bool) analytics.Metric {
	if filterActive {
		return analytics.ByRevenue
	}
	return analytics.ByCount
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
