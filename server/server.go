// Package server provides a local web UI for browsing chat statistics,
// searching chats and managing collected memories.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sonnes/obsession/core"
	"github.com/sonnes/obsession/reader"
	htmlrender "github.com/sonnes/obsession/render/html"
	jsonrender "github.com/sonnes/obsession/render/json"
	"github.com/sonnes/obsession/stats"
)

// errNoChats is returned when a character has no readable chats.
var errNoChats = errors.New("no chats")

// Server serves statistics and memories over HTTP for local browsing.
type Server struct {
	// Reader provides access to chat logs.
	Reader reader.Reader
	// MemoryFile is the path of the memory store.
	MemoryFile string
	// Port is the TCP port to listen on.
	Port int

	// Transformers run on every chat loaded for a request, in order.
	Transformers []core.Transformer

	HTML   *htmlrender.Renderer
	JSON   *jsonrender.Renderer
	Stats  *stats.Aggregator
	Logger *log.Logger

	// mu serializes read-modify-write cycles on MemoryFile.
	mu sync.Mutex
}

// New creates a Server with default renderers and aggregator.
func New(r reader.Reader, memoryFile string) *Server {
	h := htmlrender.New()
	h.Interactive = true
	return &Server{
		Reader:     r,
		MemoryFile: memoryFile,
		Port:       8080,
		HTML:       h,
		JSON:       &jsonrender.Renderer{Indent: true},
		Stats:      stats.New(stats.Config{}),
		Logger:     log.Default(),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)

	r.Route("/c/{character}", func(r chi.Router) {
		r.Get("/", s.handleStats)
		r.Get("/search", s.handleSearch)
	})
	r.Get("/api/c/{character}/stats", s.handleStatsJSON)

	r.Route("/m/{key}", func(r chi.Router) {
		r.Get("/", s.handleMemories)
		r.Post("/", s.handleAddMemory)
		r.Get("/export.zip", s.handleExport)
		r.Post("/{id}/title", s.handleSetTitle)
		r.Post("/{id}/delete", s.handleDeleteMemory)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("serving", "addr", "http://localhost"+srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs method, path, status and duration of each request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logFn := s.Logger.Info
		if status >= http.StatusInternalServerError {
			logFn = s.Logger.Error
		}
		logFn("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// loadCharacter reads and merges every chat of a character, applying the
// configured transformers.
func (s *Server) loadCharacter(name string) (*core.Chat, error) {
	chats, err := s.Reader.ReadCharacter(name)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, errNoChats
	}

	charName := chats[0].CharacterName
	if charName == "" {
		charName = name
	}
	c := core.Merge(chats[0].UserName, charName, chats...)
	if err := core.Chain(c, s.Transformers...); err != nil {
		return nil, fmt.Errorf("transform chats: %w", err)
	}
	return c, nil
}
