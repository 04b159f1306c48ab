// Package config loads the service configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultBucket      = "reports"
	DefaultIngestRoute = "/ingest-typeform"
	DefaultPort        = 8080
)

// Config holds everything the service needs to run.
type Config struct {
	// SupabaseURL is the project base URL (SUPABASE_URL).
	SupabaseURL string
	// SupabaseKey is the service-role key (SUPABASE_SERVICE_ROLE_KEY).
	SupabaseKey string
	// Bucket is the storage bucket (SUPABASE_BUCKET).
	Bucket string
	// IngestRoute is the webhook path (INGEST_ROUTE). Must start with "/".
	IngestRoute string
	// FileFieldID is the form field holding the uploaded document
	// (JSON_FILE_FIELD_ID).
	FileFieldID string
	// TypeformToken authenticates Typeform file downloads (TYPEFORM_TOKEN).
	// Optional; without it only public file URLs work.
	TypeformToken string
	// Port is the HTTP listen port (PORT).
	Port int
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		Bucket:        envOr("SUPABASE_BUCKET", DefaultBucket),
		IngestRoute:   envOr("INGEST_ROUTE", DefaultIngestRoute),
		FileFieldID:   os.Getenv("JSON_FILE_FIELD_ID"),
		TypeformToken: os.Getenv("TYPEFORM_TOKEN"),
		Port:          DefaultPort,
	}

	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("config: SUPABASE_URL is required")
	}
	if cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("config: SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if cfg.FileFieldID == "" {
		return nil, fmt.Errorf("config: JSON_FILE_FIELD_ID is required")
	}
	if !strings.HasPrefix(cfg.IngestRoute, "/") {
		return nil, fmt.Errorf("config: INGEST_ROUTE %q must start with /", cfg.IngestRoute)
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
