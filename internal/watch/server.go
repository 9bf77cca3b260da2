package watch

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PreviewServer serves a generated site for local viewing.
type PreviewServer struct {
	Addr   string
	router *chi.Mux
	server *http.Server
}

// NewPreviewServer creates a server for outputDir. metrics, when non-nil, is
// mounted at /metrics.
func NewPreviewServer(addr, outputDir string, metrics http.Handler) *PreviewServer {
	s := &PreviewServer{Addr: addr, router: chi.NewRouter()}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.NoCache)
	s.router.Use(middleware.Heartbeat("/health"))

	if metrics != nil {
		s.router.Handle("/metrics", metrics)
	}
	s.router.Handle("/*", http.FileServer(http.Dir(outputDir)))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the server's router.
func (s *PreviewServer) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *PreviewServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
