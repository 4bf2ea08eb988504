package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/objectstore"
	"github.com/plankhq/plank/internal/openapi"
	"github.com/plankhq/plank/internal/server/middleware"
	"github.com/plankhq/plank/internal/service"
	"github.com/plankhq/plank/internal/store"
	"github.com/plankhq/plank/internal/ui"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host               string
	Port               int
	ShutdownTimeout    time.Duration
	CORSOrigins        []string
	APIKeyHeader       string
	RateLimitPerMinute int
	// AuthRateLimitPerMinute is a tighter per-IP cap for the credential
	// routes (signup, login). Zero disables it.
	AuthRateLimitPerMinute int
	EnableUI               bool
	OAuthAuthorizeURL      string
}

// DefaultConfig returns a Config with sensible defaults for a local daemon.
func DefaultConfig() Config {
	return Config{
		Host:                   "127.0.0.1",
		Port:                   8080,
		ShutdownTimeout:        30 * time.Second,
		CORSOrigins:            []string{"*"},
		APIKeyHeader:           "X-API-Key",
		RateLimitPerMinute:     600,
		AuthRateLimitPerMinute: 30,
		EnableUI:               true,
	}
}

// Server is the top-level HTTP server for Plank. It owns the Chi router,
// the data store, the snapshot object store, and the authentication service.
type Server struct {
	cfg         Config
	router      chi.Router
	store       *store.Store
	objects     *objectstore.Store
	authSvc     *service.AuthService
	httpServer  *http.Server
	logger      *slog.Logger
	openAPIJSON []byte
}

// New creates a new Server, validates the route table, and wires up all
// routes and middleware. Call ListenAndServe to start accepting connections.
// It panics if the route table is ambiguous.
func New(cfg Config, st *store.Store, objects *objectstore.Store, authSvc *service.AuthService, logger *slog.Logger) *Server {
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		objects: objects,
		authSvc: authSvc,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	routes := s.routes()
	validateRoutes(routes)

	if doc, err := json.Marshal(openapi.Generate()); err == nil {
		s.openAPIJSON = doc
	} else {
		s.logger.Error("failed to generate OpenAPI document", "error", err)
	}

	r := chi.NewRouter()

	// --- Global middleware ---
	// RealIP is deliberately absent: origin trust is decided from the TCP
	// peer address, and X-Forwarded-For must not be able to promote a
	// public client to loopback.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recover(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", s.cfg.APIKeyHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(s.cfg.RateLimitPerMinute))
	}
	r.Use(chimw.Compress(5))

	// --- JSON 404/405 ---
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeRouteError(w, http.StatusNotFound, "Route not found: "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeRouteError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed for %s", req.Method, req.URL.Path))
	})

	// --- Route table ---
	for _, rt := range routes {
		if rt.public && !isAuthRoute(rt.pattern) {
			r.Method(rt.method, rt.pattern, rt.handler)
		}
	}
	r.Group(func(gr chi.Router) {
		if s.cfg.AuthRateLimitPerMinute > 0 {
			gr.Use(middleware.RateLimit(s.cfg.AuthRateLimitPerMinute))
		}
		for _, rt := range routes {
			if rt.public && isAuthRoute(rt.pattern) {
				gr.Method(rt.method, rt.pattern, rt.handler)
			}
		}
	})
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Authenticate(s.authSvc, s.cfg.APIKeyHeader))
		for _, rt := range routes {
			if !rt.public {
				gr.Method(rt.method, rt.pattern, rt.handler)
			}
		}
	})

	// --- Embedded browser UI ---
	if s.cfg.EnableUI {
		s.mountUI(r)
	}

	s.router = r
}

// mountUI serves the embedded single-page shell at the root.
func (s *Server) mountUI(r chi.Router) {
	distFS, err := fs.Sub(ui.Dist, "dist")
	if err != nil {
		s.logger.Error("failed to create sub filesystem for UI", "error", err)
		return
	}
	fileServer := http.FileServer(http.FS(distFS))
	r.Handle("/assets/*", fileServer)

	spaHandler := func(w http.ResponseWriter, req *http.Request) {
		f, err := distFS.Open("index.html")
		if err != nil {
			http.Error(w, "UI not available", http.StatusNotFound)
			return
		}
		defer f.Close()
		stat, _ := f.Stat()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, req, "index.html", stat.ModTime(), f.(io.ReadSeeker))
	}
	r.Get("/", spaHandler)
	r.Get("/projects", spaHandler)
	r.Get("/tasks", spaHandler)
	r.Get("/bugs", spaHandler)
	r.Get("/calendar", spaHandler)
	r.Get("/settings-ui", spaHandler)
}

// handleHealth is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","message":"plank is running"}`))
}

// handleOpenAPI serves the generated OpenAPI document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if s.openAPIJSON == nil {
		writeRouteError(w, http.StatusServiceUnavailable, "OpenAPI document unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(s.openAPIJSON)
}

func writeRouteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: model.ErrorDetail{Code: status, Message: message},
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

var _ http.Handler = (*Server)(nil)
