package server

import (
	"log/slog"
	"net/http"

	"hanami-dashboard/internal/analytics"
	"hanami-dashboard/internal/dashboard"
	"hanami-dashboard/internal/handlers"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	api    *handlers.API
}

func NewServer(data *analytics.Dataset, dash *dashboard.Service, logger *slog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		api:    handlers.NewAPI(data, dash, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.api.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.api.HandleStats)

	// Raw records and the reconciled report
	s.mux.HandleFunc("GET /sales", s.api.HandleSales)
	s.mux.HandleFunc("GET /dashboard", s.api.HandleDashboard)

	// Aggregated series, all accepting start_date/end_date/region
	s.mux.HandleFunc("GET /kpis", s.api.HandleKPIs)
	s.mux.HandleFunc("GET /sales-by-month", s.api.HandleSalesByMonth)
	s.mux.HandleFunc("GET /sales-by-category", s.api.HandleSalesByCategory)
	s.mux.HandleFunc("GET /top-products", s.api.HandleTopProducts)
	s.mux.HandleFunc("GET /customers-by-gender", s.api.HandleCustomersByGender)
	s.mux.HandleFunc("GET /sales-by-state", s.api.HandleSalesByState)
	s.mux.HandleFunc("GET /payment-methods", s.api.HandlePaymentMethods)
	s.mux.HandleFunc("GET /customers-by-age", s.api.HandleCustomersByAge)
	s.mux.HandleFunc("GET /installments", s.api.HandleInstallments)
	s.mux.HandleFunc("GET /delivery-status", s.api.HandleDeliveryStatus)
	s.mux.HandleFunc("GET /product-ratings", s.api.HandleProductRatings)
	s.mux.HandleFunc("GET /average-delivery-time", s.api.HandleAverageDeliveryTime)

	// Dataset ingestion and report download
	s.mux.HandleFunc("POST /upload", s.api.HandleUpload)
	s.mux.HandleFunc("GET /export/csv", s.api.HandleExportCSV)
	s.mux.HandleFunc("GET /export/excel", s.api.HandleExportExcel)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
