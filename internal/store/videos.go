package store

import (
	"database/sql"
	"errors"
	"fmt"

	"vidlib/internal/models"
)

const videoColumns = `id, title, filename, thumbnail, duration_sec, created_at, updated_at`

func scanVideo(scanner interface{ Scan(...any) error }) (models.Video, error) {
	var v models.Video
	err := scanner.Scan(&v.ID, &v.Title, &v.Filename, &v.Thumbnail, &v.DurationSec, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Store) CreateVideo(v *models.Video) error {
	created, err := scanVideo(s.db.QueryRow(
		`INSERT INTO videos (id, title, filename, thumbnail, duration_sec) VALUES (?, ?, ?, ?, ?) RETURNING `+videoColumns,
		v.ID, v.Title, v.Filename, v.Thumbnail, v.DurationSec,
	))
	if err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	*v = created
	return nil
}

func (s *Store) GetVideo(id string) (*models.Video, error) {
	v, err := scanVideo(s.db.QueryRow(
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return &v, nil
}

func (s *Store) GetVideoByFilename(filename string) (*models.Video, error) {
	v, err := scanVideo(s.db.QueryRow(
		`SELECT `+videoColumns+` FROM videos WHERE filename = ?`, filename,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video file %q: %w", filename, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting video by filename: %w", err)
	}
	return &v, nil
}

func (s *Store) ListVideos() ([]models.Video, error) {
	rows, err := s.db.Query(`SELECT ` + videoColumns + ` FROM videos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// SeedVideos inserts catalog entries that are not present yet.
// Existing rows keep their stored title and thumbnail; the seed is
// only a bootstrap, not a sync.
func (s *Store) SeedVideos(videos []models.Video) error {
	for _, v := range videos {
		_, err := s.db.Exec(
			`INSERT INTO videos (id, title, filename, thumbnail, duration_sec) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			v.ID, v.Title, v.Filename, v.Thumbnail, v.DurationSec,
		)
		if err != nil {
			return fmt.Errorf("seeding video %s: %w", v.ID, err)
		}
	}
	return nil
}
