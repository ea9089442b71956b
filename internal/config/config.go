// Package config handles environment variable loading for the daemon.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values for the stockplaned daemon.
type Config struct {
	// Path to the sites/credentials YAML file
	SitesFile string

	// Database connection string. Empty means the JSON file store is used.
	DatabaseURL string

	// Path of the JSON metrics store when no database is configured
	MetricsFile string

	// HTTP server port for the daemon API
	HTTPPort int

	// Static bearer token required on daemon API calls
	APIToken string

	// OTLP collector endpoint for traces
	OTELEndpoint string

	// Outbound requests per second towards the remote WordPress endpoints
	RemoteRate float64

	// Daemon API requests per second. 0 means unlimited.
	APIRateLimit float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	sitesFile := os.Getenv("STOCKPLANE_SITES_FILE")
	if sitesFile == "" {
		sitesFile = "sites.yaml"
	}

	apiToken := os.Getenv("STOCKPLANE_API_TOKEN")
	if apiToken == "" {
		return nil, fmt.Errorf("STOCKPLANE_API_TOKEN is required")
	}

	metricsFile := os.Getenv("STOCKPLANE_METRICS_FILE")
	if metricsFile == "" {
		metricsFile = "stockplane-metrics.json"
	}

	portStr := os.Getenv("PORT")
	port := 7171 // Default
	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	remoteRate := 2.0 // Default: the remote hosts rate-limit aggressively
	if s := os.Getenv("STOCKPLANE_REMOTE_RATE"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STOCKPLANE_REMOTE_RATE: %w", err)
		}
		remoteRate = r
	}

	apiRate := 10.0 // Default
	if s := os.Getenv("STOCKPLANE_API_RATE_LIMIT"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STOCKPLANE_API_RATE_LIMIT: %w", err)
		}
		apiRate = r
	}

	otelEndpoint := os.Getenv("OTEL_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "localhost:4317"
	}

	return &Config{
		SitesFile:    sitesFile,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		MetricsFile:  metricsFile,
		HTTPPort:     port,
		APIToken:     apiToken,
		OTELEndpoint: otelEndpoint,
		RemoteRate:   remoteRate,
		APIRateLimit: apiRate,
	}, nil
}
