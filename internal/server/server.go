package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/fuellog/pkg/fuel"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

const requestTimeout = 10 * time.Second

// Options configures the API server.
type Options struct {
	CORSOrigins []string
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server provides the dashboard JSON API, health check and metrics endpoints.
type Server struct {
	book   *tracker.Logbook
	budget *tracker.BudgetManager
	router *chi.Mux
	logger *slog.Logger
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewServer creates an API server. budget may be nil.
func NewServer(book *tracker.Logbook, budget *tracker.BudgetManager, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		book:   book,
		budget: budget,
		router: chi.NewRouter(),
		logger: logger,
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleAddRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
		})
		r.Get("/cycles", s.handleCycles)
		r.Get("/cycles/latest", s.handleLatestCycle)
		r.Get("/stats", s.handleStats)
		r.Get("/months", s.handleMonths)
		r.Get("/months/{year}/{month}", s.handleMonth)
		r.Get("/series", s.handleSeries)
		r.Get("/budgets", s.handleBudgets)
	})
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	records, err := s.book.Records(ctx, filter)
	if err != nil {
		s.internalError(w, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var record model.FuelRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	record.ID = ""

	result, err := s.book.Add(ctx, record)
	if isValidation(err) {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}
	if err != nil {
		s.internalError(w, "add record", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := s.book.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	if err != nil {
		s.internalError(w, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cycles, err := s.book.Cycles(ctx)
	if err != nil {
		s.internalError(w, "reconstruct cycles", err)
		return
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (s *Server) handleLatestCycle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cycles, err := s.book.Cycles(ctx)
	if err != nil {
		s.internalError(w, "reconstruct cycles", err)
		return
	}
	latest, ok := fuel.LatestCycle(cycles)
	if !ok {
		writeError(w, http.StatusNotFound, "No complete cycle yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := s.book.Stats(ctx)
	if err != nil {
		s.internalError(w, "compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := s.book.Stats(ctx)
	if err != nil {
		s.internalError(w, "compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Aggregate.Months)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	summary, err := s.book.Month(ctx, year, time.Month(month))
	if err != nil {
		s.internalError(w, "month summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := s.book.Series(ctx)
	if err != nil {
		s.internalError(w, "consumption series", err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if s.budget == nil {
		writeJSON(w, http.StatusOK, []model.Budget{})
		return
	}
	budgets, err := s.budget.Status(ctx)
	if err != nil {
		s.internalError(w, "budget status", err)
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal error", nil)
}

func parseFilter(r *http.Request) (model.RecordFilter, error) {
	var (
		q      = r.URL.Query()
		filter model.RecordFilter
		err    error
	)
	if v := q.Get("from"); v != "" {
		if filter.From, err = model.ParseDate(v); err != nil {
			return filter, err
		}
	}
	if v := q.Get("to"); v != "" {
		if filter.To, err = model.ParseDate(v); err != nil {
			return filter, err
		}
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
	}
	if v := q.Get("full_only"); v != "" {
		if filter.FullOnly, err = strconv.ParseBool(v); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

func isValidation(err error) bool {
	return errors.Is(err, fuel.ErrInvalidDate) ||
		errors.Is(err, fuel.ErrNegativeOdometer) ||
		errors.Is(err, fuel.ErrNonPositiveLiters) ||
		errors.Is(err, fuel.ErrNegativePrice)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
