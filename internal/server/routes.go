package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Use(corsMiddleware(s.corsOrigin))

		r.With(jsonContentType).Get("/videos", s.handleListVideos)

		r.Get("/video/{filename}", s.handleVideo)
		r.Head("/video/{filename}", s.handleVideo)

		r.Get("/player/ws", s.handlePlayerWS)
		r.Get("/player/sessions", s.handleSessionsSSE)
	})

	s.serveSPA()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
