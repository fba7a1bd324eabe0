package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/epubread/epubread/internal/api"
	"github.com/epubread/epubread/internal/imagestore"
	"github.com/epubread/epubread/internal/settings"
	"github.com/epubread/epubread/internal/storage"
)

func main() {
	// Command-line flags
	urlFlag := flag.String("url", "", "Server bind address (e.g., :8080 or 0.0.0.0:8080)")
	flag.Parse()

	// Configuration
	dataDir := getEnv("EPUBREAD_DATA_DIR", "./data")
	port := getEnv("EPUBREAD_PORT", "8080")

	// Determine bind address: flag takes precedence, then env, then default
	bindAddr := ":" + port
	if *urlFlag != "" {
		bindAddr = *urlFlag
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Settings decide where the databases live
	sm := settings.NewManager(dataDir)
	paths, err := sm.ResolvePaths()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	// Initialize the image metadata database
	store, err := storage.Open(paths.EpubDB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Text-book progress lives in its own database
	txtStore := storage.NewTxtStore(paths.TxtDB)
	if err := txtStore.Init(); err != nil {
		log.Fatalf("Failed to initialize txt database: %v", err)
	}

	images := imagestore.New(filepath.Join(dataDir, "images"))

	handler := api.NewHandler(store, txtStore, images, sm)
	r := api.NewRouter(handler)

	// Start server
	log.Printf("epubread server starting on %s", bindAddr)
	log.Printf("Data directory: %s", dataDir)
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
