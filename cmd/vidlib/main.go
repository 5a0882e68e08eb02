package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vidlib/internal/models"
	"vidlib/internal/server"
	"vidlib/internal/store"
)

var seedCatalog = []models.Video{
	{ID: "1", Title: "Perjalanan ke Gunung Everest", Filename: "video1.mp4", Thumbnail: "/thumbnails/video1.jpg", DurationSec: 632},
	{ID: "2", Title: "Pesona Pantai Bali", Filename: "video2.mp4", Thumbnail: "/thumbnails/video2.jpg", DurationSec: 485},
	{ID: "3", Title: "Metropolitan Jakarta Malam Hari", Filename: "video3.mp4", Thumbnail: "/thumbnails/video3.jpg", DurationSec: 721},
	{ID: "4", Title: "Hutan Amazon: Paru-paru Dunia", Filename: "video4.mp4", Thumbnail: "/thumbnails/video4.jpg", DurationSec: 554},
}

func main() {
	dbPath := envOr("DB_PATH", "./data/vidlib.db")
	listenAddr := envOr("LISTEN_ADDR", ":8080")
	migrationsDir := envOr("MIGRATIONS_DIR", "./migrations")
	mediaDir := envOr("MEDIA_DIR", "./media")
	corsOrigin := os.Getenv("CORS_ORIGIN")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatal(err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(migrationsDir); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	if err := s.SeedVideos(seedCatalog); err != nil {
		log.Fatalf("seeding catalog: %v", err)
	}

	var opts []server.Option
	if corsOrigin != "" {
		opts = append(opts, server.WithCORSOrigin(corsOrigin))
	}
	opts = append(opts, server.WithMediaDir(mediaDir))
	srv := server.NewServer(s, opts...)

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("VidLib listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
