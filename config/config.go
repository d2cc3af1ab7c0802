package config

import (
	"log"
	"os"
	"strings"
	"time"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	TokenTTL      time.Duration
	SearchBaseURL string
	SearchTimeout time.Duration
	DevMode       bool // in-memory store, relaxed secret check
}

func Load() (*Config, error) {
	tokenTTL := 2 * time.Hour
	if v := getEnv("TOKEN_TTL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			tokenTTL = d
		}
	}
	searchTimeout := 15 * time.Second
	if v := getEnv("SEARCH_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			searchTimeout = d
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "shelfmark"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:      tokenTTL,
		SearchBaseURL: getEnv("SEARCH_BASE_URL", "https://www.googleapis.com/books/v1/volumes"),
		SearchTimeout: searchTimeout,
		DevMode:       getEnv("DEV_MODE", "") == "1",
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RequiredEnvVars are checked at startup; app exits if any are unset.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"TOKEN_TTL",
	"SEARCH_BASE_URL",
	"SEARCH_TIMEOUT",
}

// ValidateEnv checks that all required env vars are set and logs status of
// required + optional. Calls log.Fatal if any required var is missing.
// Skipped entirely in dev mode, where the in-memory store needs no Mongo.
func ValidateEnv() {
	var missing []string
	for _, key := range RequiredEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		} else {
			log.Printf("env %s loaded", key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	for _, key := range OptionalEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v != "" {
			log.Printf("env %s = %s", key, v)
		} else {
			log.Printf("env %s not set (optional)", key)
		}
	}
	if os.Getenv("JWT_SECRET") == defaultJWTSecret {
		log.Fatal("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
}
