package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string
	Brand    string

	// BackendURL selects the hosted product store; empty means the local DB serves the catalog.
	BackendURL     string
	BackendKey     string
	BackendTimeout time.Duration

	ViewTTL time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("[config] ignoring %s=%q: %v", key, raw, err)
		return def
	}
	return d
}

func Load() Config {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDSN:          getenv("DB_DSN", "storefront.db"),
		MediaDir:       getenv("MEDIA_DIR", "./web/media"),
		LogFile:        getenv("LOG_FILE", "./storefront.log"),
		Brand:          getenv("BRAND", "food"),
		BackendURL:     os.Getenv("BACKEND_URL"),
		BackendKey:     os.Getenv("BACKEND_KEY"),
		BackendTimeout: duration("BACKEND_TIMEOUT", 10*time.Second),
		ViewTTL:        duration("VIEW_TTL", 30*time.Minute),
	}
	backend := "local"
	if cfg.BackendURL != "" {
		backend = cfg.BackendURL
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s BRAND=%s BACKEND=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.Brand, backend)
	return cfg
}
