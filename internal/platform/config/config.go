package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr     string
	LogLevel string

	// APIToken secures the API when non-empty; health and metrics stay open.
	APIToken string

	// Backing stores. Empty values fall back to in-memory implementations so
	// the service runs without external infrastructure.
	RedisURL    string
	DatabaseURL string

	// Data files.
	RegionsFile   string
	PreloadedFile string
	FixturesFile  string

	// Geocoding provider.
	GoogleMapsEnabled bool
	GoogleMapsAPIKey  string

	// Rule engine.
	RulesEnabled       bool
	MinConfidenceScore float64

	// CacheTTL bounds both the lookup cache and the result cache.
	CacheTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               envString("ELIGIBILITY_ADDR", ":8080"),
		LogLevel:           envString("LOG_LEVEL", "info"),
		APIToken:           os.Getenv("API_TOKEN"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RegionsFile:        envString("REGIONS_FILE", "configs/eligible-regions.yaml"),
		PreloadedFile:      envString("PRELOADED_ADDRESSES_FILE", "configs/preloaded-addresses.yaml"),
		FixturesFile:       envString("ADDRESS_FIXTURES_FILE", "configs/fixtures/addresses.json"),
		GoogleMapsEnabled:  envBool("GOOGLE_MAPS_ENABLED", false),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		RulesEnabled:       envBool("ELIGIBILITY_RULES_ENABLED", true),
		MinConfidenceScore: envFloat("MIN_CONFIDENCE_SCORE", 0.5),
		CacheTTL:           time.Duration(envInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
