package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/internal/tree"
)

// Config holds the debug HTTP API's tunables, narrowed from the teacher's
// server.Config down to what this read-mostly debug surface needs (no
// long-lived SSE writes, so WriteTimeout is always finite here).
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig mirrors the teacher's server.DefaultConfig, minus the
// SSE-motivated unlimited WriteTimeout this package has no use for.
func DefaultConfig() Config {
	return Config{
		Port:         4096,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the debug HTTP API. It holds no per-request state of its own:
// every handler loads its session fresh from manager and, for POST /tasks,
// constructs a controller.Controller scoped to that single request.
type Server struct {
	cfg      Config
	router   *chi.Mux
	httpSrv  *http.Server
	manager  *tree.Manager
	complete controller.Completer
	reflect  *reflector.Reflector
	composer *prompt.Composer
	ctrlCfg  controller.Config
}

// New constructs a Server. reflect and composer may be nil; with a nil
// composer, a task that names no role gets a composer built from the
// "coder" role's tool set.
func New(cfg Config, manager *tree.Manager, complete controller.Completer, reflect *reflector.Reflector, composer *prompt.Composer, ctrlCfg controller.Config) *Server {
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		manager:  manager,
		complete: complete,
		reflect:  reflect,
		composer: composer,
		ctrlCfg:  ctrlCfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.cfg.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the underlying router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }
