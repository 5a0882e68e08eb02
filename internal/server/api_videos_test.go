package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidlib/internal/models"
)

func TestListVideos(t *testing.T) {
	srv, st, _ := newTestServer(t)

	seed := []models.Video{
		{ID: "video1", Title: "Perjalanan ke Gunung Everest", Filename: "video1.mp4", Thumbnail: "video1.mp4"},
		{ID: "video2", Title: "Pesona Pantai Bali", Filename: "video2.mp4", Thumbnail: "video2.mp4"},
	}
	if err := st.SeedVideos(seed); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var records []videoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "video1" || records[1].ID != "video2" {
		t.Errorf("unexpected order: %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].Filename != "video1.mp4" || records[0].Title != "Perjalanan ke Gunung Everest" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestListVideosEmptyCatalog(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var records []videoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty list, got %d records", len(records))
	}
}
