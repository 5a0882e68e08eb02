package server

import (
	"net/http"

	"vidlib/internal/models"
)

// videoRecord is the catalog wire shape consumed by the browse UI.
type videoRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Filename    string  `json:"filename"`
	Thumbnail   string  `json:"thumbnail"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

func toVideoRecord(v models.Video) videoRecord {
	return videoRecord{
		ID:          v.ID,
		Title:       v.Title,
		Filename:    v.Filename,
		Thumbnail:   v.Thumbnail,
		DurationSec: v.DurationSec,
	}
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.ListVideos()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	records := make([]videoRecord, 0, len(videos))
	for _, v := range videos {
		records = append(records, toVideoRecord(v))
	}
	writeJSON(w, http.StatusOK, records)
}
