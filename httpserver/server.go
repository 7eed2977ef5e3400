package httpserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/sandbox"
)

//go:embed index.html
var indexPage []byte

// Server is the HTTP server for the playground web API.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	exec   sandbox.Service
	router chi.Router
	http   *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, logger *zap.Logger, exec sandbox.Service) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		exec:   exec,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/run", s.handleRun)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server on the configured port, blocking until it
// stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	s.http = &http.Server{Addr: addr, Handler: s.router}

	s.logger.Info("starting HTTP server", zap.String("addr", addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

type runRequest struct {
	Code string `json:"code"`
}

type runResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exit_code"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Field 'code' must be a string.")
		return
	}

	if len(req.Code) == 0 {
		writeError(w, http.StatusBadRequest, "No code provided.")
		return
	}

	if len(req.Code) > s.cfg.Sandbox.MaxSourceChars {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Code too long. Max %d characters allowed.", s.cfg.Sandbox.MaxSourceChars))
		return
	}

	result, err := s.exec.Execute(r.Context(), req.Code)
	if err != nil {
		// Infrastructure fault, not a property of the submitted code.
		s.logger.Error("execution backend failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Execution backend unavailable.")
		return
	}

	// Timeouts are a recoverable condition caused by the submitted code,
	// reported as a successful response with an explanatory message.
	if result.Outcome.TimedOut() {
		writeJSON(w, http.StatusOK, map[string]string{"error": result.Message})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
}
