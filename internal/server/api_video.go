package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidlib/internal/byterange"
)

// handleVideo serves a media file with range-request semantics: the
// whole file on a plain GET, a single byte span with partial-content
// framing when a Range header is present. Each request opens its own
// handle, so concurrent overlapping ranges never contend.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !isValidFilename(filename) {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	path := filepath.Join(s.mediaDir, filename)
	if rel, err := filepath.Rel(s.mediaDir, path); err != nil || strings.HasPrefix(rel, "..") {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	size := info.Size()

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, err := io.Copy(w, f); err != nil {
			log.Printf("streaming %s: %v", filename, err)
		}
		return
	}

	rng, err := byterange.Parse(rangeHeader, size)
	if err != nil {
		if !errors.Is(err, byterange.ErrUnsatisfiable) && !errors.Is(err, byterange.ErrMalformed) {
			log.Printf("parsing range %q: %v", rangeHeader, err)
		}
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "Range Not Satisfiable")
		return
	}

	w.Header().Set("Content-Range", rng.ContentRange())
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, io.NewSectionReader(f, rng.Start, rng.Length())); err != nil {
		log.Printf("streaming %s %s: %v", filename, rng.ContentRange(), err)
	}
}
