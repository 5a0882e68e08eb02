package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed all:web/dist
var webFS embed.FS

// serveSPA mounts the embedded library UI at the root. Unknown
// non-API paths fall back to index.html so the browser keeps routing
// the grid and player views itself.
func (s *Server) serveSPA() {
	dist, err := fs.Sub(webFS, "web/dist")
	if err != nil {
		panic("embedded web assets missing: " + err.Error())
	}
	assets := http.FileServer(http.FS(dist))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			http.NotFound(w, r)
			return
		}
		f, err := dist.Open(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			r.URL.Path = "/"
		} else {
			f.Close()
		}
		assets.ServeHTTP(w, r)
	})
}
