// Package server exposes the stored listings over HTTP: an HTML search page,
// a JSON query API and the analysis report.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"shop-harvester/config"
	"shop-harvester/models"
	"shop-harvester/services"
	"shop-harvester/storage"
	"shop-harvester/utils"
)

// Server serves read-only views over a Store. Every request re-reads and
// re-normalizes the stored rows.
type Server struct {
	store      storage.Store
	normalizer *services.Normalizer
	insights   *services.InsightService
	logger     *utils.Logger
	addr       string
	handler    http.Handler
}

func New(cfg *config.Config, store storage.Store, logger *utils.Logger) *Server {
	s := &Server{
		store:      store,
		normalizer: services.NewNormalizer(logger),
		insights:   services.NewInsightService(logger),
		logger:     logger,
		addr:       cfg.HTTPAddr,
	}

	r := mux.NewRouter()
	r.Use(s.logging)

	r.HandleFunc("/", s.index).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/products", s.products).Methods(http.MethodGet)
	api.HandleFunc("/report", s.report).Methods(http.MethodGet)

	lmt := tollbooth.NewLimiter(cfg.RateLimitPerSec, nil)
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"rate limit exceeded"}`)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	s.handler = c.Handler(tollbooth.LimitHandler(lmt, r))
	return s
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("[server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// query reads the store and applies the filter given by the request's
// query, min_price and max_price values (query string or form body).
func (s *Server) query(r *http.Request) (services.Filter, []models.NormalizedRecord, error) {
	f, err := services.ParseFilter(r.FormValue("query"), r.FormValue("min_price"), r.FormValue("max_price"))
	if err != nil {
		return services.Filter{}, nil, err
	}
	rows, err := s.store.ReadAll()
	if err != nil {
		return f, nil, err
	}
	return f, f.Apply(s.normalizer.Normalize(rows)), nil
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	_, records, err := s.query(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ReadAll()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.insights.Report(rows))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

type indexData struct {
	Query    string
	MinPrice string
	MaxPrice string
	Error    string
	Records  []models.NormalizedRecord
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Query:    r.FormValue("query"),
		MinPrice: r.FormValue("min_price"),
		MaxPrice: r.FormValue("max_price"),
	}

	status := http.StatusOK
	_, records, err := s.query(r)
	switch {
	case errors.Is(err, services.ErrBadBound):
		status = http.StatusBadRequest
		data.Error = err.Error()
	case err != nil:
		s.fail(w, err)
		return
	default:
		data.Records = records
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("[server] render index: %v", err)
	}
}

// fail maps bad price bounds to 400 and anything else to 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrBadBound) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("[server] %v", err)
	writeError(w, http.StatusInternalServerError, "failed to read listings")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Debug("[server] %s %s %d %v", r.Method, r.URL.RequestURI(), wrapped.statusCode, time.Since(start))
	})
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"rating": func(r *float64) string {
		if r == nil {
			return "–"
		}
		return formatFloat(*r, 1)
	},
	"price": func(p float64) string { return "₹" + formatFloat(p, 0) },
}).Parse(indexHTML))
