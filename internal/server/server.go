// Package server exposes proof checking over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/internal/script"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// DefaultMaxBody limits the size of a submitted proof script.
const DefaultMaxBody = 1 << 20

// Config holds configuration for the server.
type Config struct {
	Addr    string
	Catalog *rules.Catalog
	// Store, when set, records every check.
	Store   *history.Store
	Logger  *slog.Logger
	MaxBody int64
}

// Server checks proof scripts posted to it. Requests share one read-only
// catalog; each proof gets its own document.
type Server struct {
	addr    string
	catalog *rules.Catalog
	store   *history.Store
	logger  *slog.Logger
	maxBody int64
}

// New creates a server.
func New(cfg Config) *Server {
	s := &Server{
		addr:    cfg.Addr,
		catalog: cfg.Catalog,
		store:   cfg.Store,
		logger:  cfg.Logger,
		maxBody: cfg.MaxBody,
	}
	if s.catalog == nil {
		s.catalog = rules.Builtin()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/rules/{name}", s.handleRule)
		r.Post("/check", s.handleCheck)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.NewRulesOutput(s.catalog))
}

func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rule, ok := s.catalog.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("rule %q not found", name), 0)
		return
	}
	writeJSON(w, http.StatusOK, render.Rule{Name: rule.Name(), Kind: rule.Kind().String(), Forms: rule.Describe()})
}

// handleCheck reads a proof script from the body and reports each line.
// The optional name query parameter labels the proof in the response and
// in the history. Lemma commands are rejected since they name files.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "proof too large", 0)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), 0)
		return
	}

	reader := script.NewReader(s.catalog, script.WithoutLemmas(), script.WithLogger(s.logger))
	res, err := reader.Read(name, bytes.NewReader(content))
	if err != nil {
		var lineErr *script.LineError
		if errors.As(err, &lineErr) {
			writeError(w, http.StatusBadRequest, lineErr.Error(), lineErr.Line)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), 0)
		return
	}

	report := res.Doc.Verify()
	out := render.NewCheckResult(name, res.Doc, report)
	for _, warn := range res.Warnings {
		out.Warnings = append(out.Warnings, warn.Error())
	}

	if s.store != nil {
		run := history.NewRun(name, content, report)
		if _, err := s.store.RecordRun(r.Context(), run); err != nil {
			s.logger.Warn("failed to record run", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type errorBody struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, line int) {
	writeJSON(w, status, errorBody{Error: msg, Line: line})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
