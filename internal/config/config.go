// Package config loads settings for the client and the reference server from
// the environment, with an optional .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds every tunable. The client only needs APIBase; the rest drives
// the reference server.
type Config struct {
	// APIBase is the plant service base URL the terminal client talks to.
	APIBase string

	// Addr is the reference server's listen address.
	Addr string
	// DatabasePath is the sqlite file backing the reference server.
	DatabasePath string
	// UploadDir receives uploaded images, served back under /uploads/.
	UploadDir string
	// PublicBase is the externally visible base URL for uploaded file links.
	// Defaults to http://<Addr>.
	PublicBase string

	// OpenRouterKey enables the vision-model identifier. When empty the
	// server answers from its built-in catalog.
	OpenRouterKey string
	// IdentifyModel is the vision model used when OpenRouterKey is set.
	IdentifyModel string
}

// Load reads the environment, considering a .env file when present.
func Load() Config {
	_ = godotenv.Load()

	addr := getEnv("PLANTID_ADDR", "localhost:8080")
	return Config{
		APIBase:       getEnv("PLANTID_API_BASE", "http://localhost:8080"),
		Addr:          addr,
		DatabasePath:  getEnv("PLANTID_DB", "plantid.db"),
		UploadDir:     getEnv("PLANTID_UPLOAD_DIR", "uploads"),
		PublicBase:    getEnv("PLANTID_PUBLIC_BASE", "http://"+addr),
		OpenRouterKey: getEnv("OPENROUTER_API_KEY", ""),
		IdentifyModel: getEnv("PLANTID_IDENTIFY_MODEL", "google/gemini-3-flash-preview"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
