package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the geocode lookup plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer    *http.Server
	geocoder      domain.Geocoder
	defaultRegion string
	logger        *slog.Logger
}

// NewServer creates an HTTP server with /geocode, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready ReadinessChecker, geocoder domain.Geocoder, defaultRegion string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		geocoder:      geocoder,
		defaultRegion: defaultRegion,
		logger:        logger,
	}

	mux.HandleFunc("GET /geocode", s.handleGeocode)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type geocodeResponse struct {
	Results   []domain.PlaceResult `json:"results"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
}

// handleGeocode serves GET /geocode?address=..&exactly_one=..&types=..&bounds=..&region=..
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req := domain.GeocodeRequest{Address: q.Address}
	var resp domain.GeocodeResponse
	if q.ExactlyOne {
		result, err := s.geocoder.Geocode(r.Context(), q)
		if err != nil {
			s.logFailure(q, err)
			writeError(w, err)
			return
		}
		resp = domain.NewResponse(req, slices.Values([]domain.Result{result}), nil)
	} else {
		results, err := s.geocoder.GeocodeAll(r.Context(), q)
		if err != nil {
			s.logFailure(q, err)
			writeError(w, err)
			return
		}
		resp = domain.NewResponse(req, results, nil)
	}

	writeJSON(w, http.StatusOK, geocodeResponse{Results: resp.Results})
}

func (s *Server) parseQuery(r *http.Request) (domain.Query, error) {
	v := r.URL.Query()

	q := domain.Query{Address: v.Get("address"), ExactlyOne: true}
	if q.Address == "" {
		return q, fmt.Errorf("%w: address is required", domain.ErrInvalidParameter)
	}

	var err error
	if raw := v.Get("exactly_one"); raw != "" {
		if q.ExactlyOne, err = strconv.ParseBool(raw); err != nil {
			return q, fmt.Errorf("%w: exactly_one must be a boolean", domain.ErrInvalidParameter)
		}
	}
	if raw := v.Get("types"); raw != "" {
		if q.IncludeTypes, err = strconv.ParseBool(raw); err != nil {
			return q, fmt.Errorf("%w: types must be a boolean", domain.ErrInvalidParameter)
		}
	}
	if q.Bounds, err = domain.ParseBounds(v.Get("bounds")); err != nil {
		return q, err
	}

	region := v.Get("region")
	if region == "" {
		region = s.defaultRegion
	}
	if q.Region, err = domain.NormalizeRegion(region); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) logFailure(q domain.Query, err error) {
	s.logger.Warn("geocode lookup failed",
		"address", q.Address,
		"error_kind", domain.ErrorKind(err),
		"error", err,
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// statusFor maps an error kind onto the HTTP status returned to callers.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoResult), errors.Is(err, domain.ErrNotExactlyOne):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), geocodeResponse{
		Results:   []domain.PlaceResult{},
		Error:     err.Error(),
		ErrorKind: domain.ErrorKind(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
