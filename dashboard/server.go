package dashboard

import (
	"context"
	"embed"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/starshine-sys/clipbot/common"
)

// DefaultAddr is the dashboard's default listen address.
const DefaultAddr = ":5000"

//go:embed static
var static embed.FS

// Server serves the dashboard.
type Server struct {
	Store *Store
	Hub   *Hub

	router chi.Router
}

// NewServer creates the dashboard server for the given store.
func NewServer(s *Store) (*Server, error) {
	hub, err := NewHub(s)
	if err != nil {
		return nil, errors.Wrap(err, "creating push hub")
	}

	srv := &Server{
		Store: s,
		Hub:   hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", srv.index)
	r.Get("/ws", hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/commands", srv.commands)
		r.Get("/stats", srv.stats)
	})

	srv.router = r
	return srv, nil
}

// ServeHTTP implements http.Handler.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.router.ServeHTTP(w, r)
}

// ListenAndServe serves the dashboard on addr until ctx is cancelled.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	log := common.Log.Named("dashboard")

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting dashboard on %v", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving dashboard")
	case <-ctx.Done():
	}

	log.Infof("Shutting down dashboard")

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(sctx)
}

func (srv *Server) index(w http.ResponseWriter, r *http.Request) {
	b, err := static.ReadFile("static/index.html")
	if err != nil {
		common.Log.Named("dashboard").Errorf("Error reading index page: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func (srv *Server) commands(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, srv.Store.History())
}

func (srv *Server) stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, srv.Store.Stats())
}
