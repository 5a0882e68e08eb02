package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vidlib/internal/player"
	"vidlib/internal/store"
)

// PipelineFactory builds the media pipeline backing one playback
// session. The default factory issues range requests back against
// this server's own delivery endpoint.
type PipelineFactory func(r *http.Request) player.Pipeline

type Server struct {
	router          chi.Router
	store           *store.Store
	registry        *player.Registry
	mediaDir        string
	corsOrigin      string
	pipelineFactory PipelineFactory
}

func NewServer(s *store.Store, opts ...Option) *Server {
	srv := &Server{
		router:   chi.NewRouter(),
		store:    s,
		registry: player.NewRegistry(),
		mediaDir: "./media",
	}
	for _, o := range opts {
		o(srv)
	}
	if srv.pipelineFactory == nil {
		srv.pipelineFactory = srv.defaultPipelineFactory
	}
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.routes()
	return srv
}

type Option func(*Server)

func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

func WithMediaDir(dir string) Option {
	return func(s *Server) { s.mediaDir = dir }
}

func WithPipelineFactory(f PipelineFactory) Option {
	return func(s *Server) { s.pipelineFactory = f }
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) defaultPipelineFactory(r *http.Request) player.Pipeline {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return player.NewHTTPPipeline(scheme+"://"+r.Host+"/api/video",
		player.WithDurationLookup(func(ctx context.Context, filename string) (float64, error) {
			v, err := s.store.GetVideoByFilename(filename)
			if err != nil {
				return 0, err
			}
			return v.DurationSec, nil
		}),
	)
}
