package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/rs/cors"
)

type Server struct {
	analytics *analytics.Service
	router    *http.ServeMux
	addr      string
	origins   []string
	logger    *slog.Logger
}

// NewServer wires the read-only analytics surface. An empty origins list
// allows any origin.
func NewServer(svc *analytics.Service, addr string, origins []string, logger *slog.Logger) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{
		analytics: svc,
		router:    http.NewServeMux(),
		addr:      addr,
		origins:   origins,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	s.router.HandleFunc("GET /{$}", s.handleSessions)
	s.router.HandleFunc("GET /sessions/{id}", s.handleSessionDetail)
	s.router.HandleFunc("GET /compare", s.handleCompare)

	// JSON API
	s.router.HandleFunc("GET /api/sessions", s.handleAPISessions)
	s.router.HandleFunc("GET /api/sessions/{id}", s.handleAPISession)
	s.router.HandleFunc("GET /api/aggregate", s.handleAPIAggregate)
	s.router.HandleFunc("GET /api/compare", s.handleAPICompare)
}

// Handler returns the router behind the CORS middleware.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "url", "http://"+ln.Addr().String())

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown", "error", err)
		}
	}()

	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
