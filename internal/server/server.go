// Package server exposes the assessment engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/config"
	"github.com/abhisek/prism/internal/report"
)

// Server wires the engine and report service into an HTTP API.
type Server struct {
	engine  *assessment.Engine
	reports *report.Service
	cfg     config.Server
}

// New creates a server.
func New(engine *assessment.Engine, reports *report.Service, cfg config.Server) *Server {
	return &Server{engine: engine, reports: reports, cfg: cfg}
}

// Handler builds the route table. All /api routes require a bearer
// token; /health does not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/products/register", s.handleRegister)
	api.HandleFunc("POST /api/assessment/respond", s.handleRespond)
	api.HandleFunc("POST /api/assessment/respond/batch", s.handleRespondBatch)
	api.HandleFunc("GET /api/assessment/{session_id}/status", s.handleStatus)
	api.HandleFunc("GET /api/assessment/{session_id}/report", s.handleReport)

	mux.Handle("/api/", s.requireBearer(api))
	return logRequests(mux)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(os.Stderr, "prism: listening on %s\n", s.cfg.Addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
