// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the HTTP service surface: search proxying, entity
// disambiguation, and profile generation. Handlers are stateless; every
// request computes its own clusters and profiles from fresh provider calls.
// Implements: prd001-search-proxy (R6);
//
//	prd002-entity-disambiguation (R6);
//	prd003-profile (R5);
//	docs/ARCHITECTURE.md § Service surface.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/entity-engine/internal/entity"
	"github.com/pdiddy/entity-engine/internal/exa"
	"github.com/pdiddy/entity-engine/internal/profile"
	"github.com/pdiddy/entity-engine/pkg/types"
)

const serviceName = "entity-engine"

// SearchProvider is the provider surface the handlers consume. *exa.Client
// implements it.
type SearchProvider interface {
	Search(ctx context.Context, q exa.Query) ([]types.SearchResult, error)
	Contents(ctx context.Context, req exa.ContentsRequest) ([]exa.ContentItem, error)
	FindSimilar(ctx context.Context, q exa.SimilarQuery) ([]types.SearchResult, error)
}

// Disambiguator groups search results into entity clusters. *entity.Builder
// implements it.
type Disambiguator interface {
	Disambiguate(ctx context.Context, results []types.SearchResult, name string, anchor types.AnchorFacts, autoSelect bool, w io.Writer) entity.Outcome
}

// Profiler assembles profiles for selected clusters. *profile.Assembler
// implements it.
type Profiler interface {
	Assemble(ctx context.Context, req profile.Request, w io.Writer) (*profile.Result, error)
}

// Options carries the service identity and logging setup.
type Options struct {
	// Logger receives request logs and compute warnings. Nil discards them.
	Logger *slog.Logger

	// Version is reported by the root and health endpoints.
	Version string

	// LLMEnabled is reported by the health endpoint. When false the
	// delegated clustering strategy and the LLM summarization tiers are off.
	LLMEnabled bool
}

// Server holds the handlers' collaborators.
type Server struct {
	provider   SearchProvider
	entities   Disambiguator
	profiles   Profiler
	log        *slog.Logger
	version    string
	llmEnabled bool
}

// New builds the service around its three collaborators.
func New(provider SearchProvider, entities Disambiguator, profiles Profiler, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		provider:   provider,
		entities:   entities,
		profiles:   profiles,
		log:        log,
		version:    opts.Version,
		llmEnabled: opts.LLMEnabled,
	}
}

// Handler returns the service routes behind request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/contents", s.handleContents)
	mux.HandleFunc("POST /api/v1/find-similar", s.handleFindSimilar)
	mux.HandleFunc("POST /api/v1/batch-search", s.handleBatchSearch)
	mux.HandleFunc("POST /api/v1/entity/search", s.handleEntitySearch)
	mux.HandleFunc("POST /api/v1/entity/profile", s.handleEntityProfile)
	return requestLogger(s.log, mux)
}

// warnWriter adapts the compute paths' io.Writer warnings onto the server
// log, so fallbacks inside clustering and profile assembly show up in the
// request log stream.
func (s *Server) warnWriter() io.Writer {
	return warnLogger{log: s.log}
}

type warnLogger struct {
	log *slog.Logger
}

func (l warnLogger) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	msg = strings.TrimPrefix(msg, "warning: ")
	if msg != "" {
		l.log.Warn(msg)
	}
	return len(p), nil
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
