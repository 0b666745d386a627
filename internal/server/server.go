// Package server exposes the clustering pipeline as a JSON HTTP API for a
// presentation layer.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/TrevorS/winecluster"
	"github.com/TrevorS/winecluster/internal/dataset"
)

// Options configures a Server.
type Options struct {
	// Core is the library configuration shared by every request.
	Core winecluster.Config

	// MinK, MaxK and FinalK are used when a request omits kmin, kmax or k.
	MinK, MaxK, FinalK int

	// Gatherer backs /metrics. nil serves prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server serves one loaded dataset.
type Server struct {
	router *chi.Mux
	data   *dataset.Dataset
	opts   Options
}

// New creates a Server over data.
func New(data *dataset.Dataset, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{router: chi.NewRouter(), data: data, opts: opts}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/summary", s.handleSummary)
	s.router.Get("/api/histogram", s.handleHistogram)
	s.router.Get("/api/curve", s.handleCurve)
	s.router.Get("/api/partition", s.handlePartition)
	s.router.Get("/api/projection", s.handleProjection)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Int("wines", len(s.data.Wines)).Msg("serving")
	return srv.ListenAndServe()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, winecluster.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, winecluster.ErrDegenerateInput),
		errors.Is(err, winecluster.ErrNumericInstability),
		errors.Is(err, dataset.ErrEmpty):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// filterFrom reads the origin, name, alcohol_min and alcohol_max parameters.
func filterFrom(r *http.Request) (dataset.Filter, error) {
	q := r.URL.Query()
	f := dataset.Filter{Origin: q.Get("origin"), NameContains: q.Get("name")}
	var err error
	if f.AlcoholMin, err = optionalFloat(q.Get("alcohol_min"), "alcohol_min"); err != nil {
		return f, err
	}
	if f.AlcoholMax, err = optionalFloat(q.Get("alcohol_max"), "alcohol_max"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("%s: %q is not a number", name, raw)
	}
	return &v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s: %q is not an integer", name, raw)
	}
	return v, nil
}

// selection applies the request's filter to the served dataset.
func (s *Server) selection(r *http.Request) (*dataset.Dataset, error) {
	f, err := filterFrom(r)
	if err != nil {
		return nil, err
	}
	return f.Apply(s.data), nil
}
