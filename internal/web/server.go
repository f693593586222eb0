// Package web provides the HTTP API and result pages for sheet loads.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/sheetload/internal/config"
	"github.com/JonMunkholm/sheetload/internal/loader"
	"github.com/JonMunkholm/sheetload/internal/web/middleware"
)

// Pinger checks a backing store. *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server.
type Server struct {
	service *loader.Service
	db      Pinger
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	stopLimiters context.CancelFunc
}

// NewServer wires routes and middleware. db may be nil when persistence is
// disabled.
func NewServer(service *loader.Service, cfg *config.Config, db Pinger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		service:      service,
		db:           db,
		cfg:          cfg,
		router:       chi.NewRouter(),
		stopLimiters: cancel,
	}
	s.setupRoutes(ctx)
	return s
}

func (s *Server) setupRoutes(ctx context.Context) {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(s.securityHeaders)
	if s.cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	limitLoads := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		general := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		loads := newRateLimiter(s.cfg.Rate.LoadLimit, time.Minute)
		go general.run(ctx)
		go loads.run(ctx)
		r.Use(general.middleware)
		limitLoads = loads.middleware
	}
	auth := middleware.APIKeyAuth(&s.cfg.Security)

	r.Get("/healthz", s.handleHealth)

	// Pages
	r.Get("/", s.handleIndex)
	r.Get("/load/{loadID}", s.handleResultPage)
	r.With(auth, limitLoads).Post("/load/{schema}", s.handleLoadForm)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth)
		r.Get("/sheets", s.handleListSchemas)
		r.Get("/sheets/{schema}", s.handleGetSchema)
		r.With(limitLoads).Post("/load/{schema}", s.handleLoad)
		r.Get("/load/{loadID}", s.handleResult)
		r.Get("/load/{loadID}/rows", s.handleResultRows)
		r.Get("/loads", s.handleRecent)
		r.Get("/status", s.handleStatus)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.Serve(ln)
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopLimiters()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}

// hostOnly strips the port from a host:port address.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
