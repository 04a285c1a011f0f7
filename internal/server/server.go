// Package server provides the HTTP handlers and routing for the mandi price tool.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mandi-price/internal/lookup"
)

const maxBodyBytes = 1 << 20

// Server contains the configured router, lookup service and logger.
type Server struct {
	router *chi.Mux
	lookup *lookup.Service
	log    *slog.Logger
	tool   Tool
}

// New constructs a Server with middleware and routes configured.
// A nil logger uses slog.Default().
func New(svc *lookup.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		lookup: svc,
		log:    logger,
		tool:   priceTool(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tools", s.handleListTools)
	s.router.Post("/", s.handlePrices)
	s.router.Post("/mandi-prices", s.handlePrices)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": []Tool{s.tool}})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	// An unreadable body is treated like an absent one.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		body = nil
	}

	resp, status, err := s.lookup.Run(r.Context(), body)
	log := s.log.With("request_id", middleware.GetReqID(r.Context()))
	switch kind := lookup.KindOf(err); kind {
	case 0:
		log.Info("price lookup", "status", status)
	case lookup.InvalidRequestFormat, lookup.MissingParameters:
		log.Warn("price lookup rejected", "kind", kind.String(), "err", err)
	default:
		log.Error("price lookup failed", "kind", kind.String(), "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
