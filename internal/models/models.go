package models

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Video is one catalog entry. Filename is the key the delivery
// service resolves inside the media root; Thumbnail is a poster
// source served alongside it.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	Thumbnail   string    `json:"thumbnail"`
	DurationSec float64   `json:"duration_sec,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
