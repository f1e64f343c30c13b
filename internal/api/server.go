package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/supportbot/internal/store"
	"github.com/MikeSquared-Agency/supportbot/internal/support"
)

// ChatService is the orchestration the HTTP layer drives.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, message string) (*support.Reply, error)
	History(ctx context.Context, sessionID string) ([]store.Turn, error)
}

type Server struct {
	router *chi.Mux
	port   int
	svc    ChatService
	http   *http.Server
}

// NewServer wires the chat API, health check and static widget. An empty
// staticDir disables static serving.
func NewServer(port int, svc ChatService, staticDir string, corsOrigins []string) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		router: router,
		port:   port,
		svc:    svc,
	}

	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/message", s.postMessage)
		r.Get("/conversation/{sessionId}", s.getConversation)
	})

	if staticDir != "" {
		s.mountStatic(staticDir)
	}

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server starting", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) mountStatic(dir string) {
	files := http.FileServer(http.Dir(dir))
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
	s.router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		// Unknown paths fall through to chi's 404 rather than a directory listing.
		p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
