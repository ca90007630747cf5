// Package server exposes the query pipeline over HTTP: one page that runs
// the pipeline and renders the result as an HTML table.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/edgequery/edgequery/pkg/logger"
	"github.com/edgequery/edgequery/pkg/query"
	"github.com/edgequery/edgequery/pkg/table"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const stderrExcerptLimit = 2048

// QueryRunner is what the server needs from the pipeline.
type QueryRunner interface {
	RunNamed(ctx context.Context, name string) (*table.Result, error)
	Names() []string
}

// Config defines the HTTP server parameters. Zero values get defaults in
// New; there is no ambient global application object.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the rendered query results.
type Server struct {
	cfg    Config
	runner QueryRunner
	tmpl   *template.Template
	server *http.Server
}

// New builds a Server from an explicit configuration.
func New(cfg Config, runner QueryRunner) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("query runner cannot be nil")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		// The remote query blocks the whole request; give it room.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{cfg: cfg, runner: runner, tmpl: tmpl}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler exposes the route table. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	l := logger.Get()
	l.Infof("HTTP server listening on %s", s.cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

type resultPage struct {
	Result     *table.Result
	QueryNames []string
}

type errorPage struct {
	Message string
	Detail  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("q")
	result, err := s.runner.RunNamed(r.Context(), name)
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "result.html.tmpl", resultPage{
		Result:     result,
		QueryNames: s.runner.Names(),
	}); err != nil {
		logger.Get().Errorf("Failed to render result page: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// renderError maps pipeline error kinds to status codes and a generic error
// page. Full detail goes to the log, not the client.
func (s *Server) renderError(w http.ResponseWriter, err error) {
	l := logger.Get()
	l.Errorf("Pipeline failed: %v", err)

	status := http.StatusInternalServerError
	page := errorPage{Message: "The query could not be completed."}

	var connectErr *query.ConnectError
	var commandErr *query.CommandError
	var parseErr *table.ParseError

	switch {
	case errors.Is(err, query.ErrUnknownQuery):
		status = http.StatusNotFound
		page.Message = "No such named query."
	case errors.As(err, &connectErr):
		status = http.StatusBadGateway
		page.Message = "Could not reach the edge node."
	case errors.As(err, &commandErr):
		status = http.StatusBadGateway
		page.Message = "The remote query failed."
		page.Detail = commandErr.StderrExcerpt(stderrExcerptLimit)
	case errors.As(err, &parseErr):
		page.Message = "The query output could not be parsed."
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "error.html.tmpl", page); err != nil {
		l.Errorf("Failed to render error page: %v", err)
	}
}
