package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shopify-insights-core/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportsHandler exposes the aggregate read endpoints the dashboard
// consumes. Every endpoint is scoped by ?shop=<domain>; the date-ranged ones
// take ?from= and ?to= (RFC 3339 or YYYY-MM-DD).
type ReportsHandler struct {
	reports *application.ReportService
	logger  zerolog.Logger
}

// NewReportsHandler creates the reports handler.
func NewReportsHandler(reports *application.ReportService, logger zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// Routes mounts the report endpoints.
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.handleStats)
	r.Get("/orders-by-date", h.handleOrdersByDate)
	r.Get("/new-customers-by-date", h.handleNewCustomersByDate)
	r.Get("/top-products", h.handleTopProducts)
	r.Get("/top-customers", h.handleTopCustomers)
	r.Get("/category-revenue", h.handleCategoryRevenue)
	r.Get("/abandoned-carts", h.handleAbandonedCarts)
	return r
}

func (h *ReportsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	stats, err := h.reports.Stats(r.Context(), shop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, stats)
}

func (h *ReportsHandler) handleOrdersByDate(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := h.reports.OrdersByDate(r.Context(), shop, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, stats)
}

func (h *ReportsHandler) handleNewCustomersByDate(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := h.reports.NewCustomersByDate(r.Context(), shop, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, stats)
}

func (h *ReportsHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	top, err := h.reports.TopProducts(r.Context(), shop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, top)
}

func (h *ReportsHandler) handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	top, err := h.reports.TopCustomers(r.Context(), shop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, top)
}

func (h *ReportsHandler) handleCategoryRevenue(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	categories, err := h.reports.CategoryRevenue(r.Context(), shop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, categories)
}

func (h *ReportsHandler) handleAbandonedCarts(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.shop(w, r)
	if !ok {
		return
	}
	count, err := h.reports.AbandonedCarts(r.Context(), shop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, map[string]int64{"count": count})
}

func (h *ReportsHandler) shop(w http.ResponseWriter, r *http.Request) (string, bool) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		http.Error(w, "shop parameter is required", http.StatusBadRequest)
		return "", false
	}
	return shop, true
}

func (h *ReportsHandler) respond(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode report response")
	}
}

func (h *ReportsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Report query failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// dateRange parses from/to query parameters, defaulting to the last 30 days.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseDate(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from parameter: %w", err)
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseDate(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to parameter: %w", err)
		}
		// A bare date means "through the end of that day".
		if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	return from, to, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
