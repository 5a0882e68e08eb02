package server

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"vidlib/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	_, f, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(f), "..", "..", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	if err := s.Migrate(dir); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestServer builds a server over an in-memory store and a
// temporary media root. Returned mediaDir is where test assets go.
func newTestServer(t *testing.T, opts ...Option) (*Server, *store.Store, string) {
	t.Helper()
	s := newTestStore(t)
	mediaDir := t.TempDir()
	all := append([]Option{WithMediaDir(mediaDir)}, opts...)
	srv := NewServer(s, all...)
	return srv, s, mediaDir
}

func writeMediaFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("writing media file: %v", err)
	}
}
