package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime parameters of the coordination service.
type Config struct {
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int
	PresenceURL    string
	GameServiceURL string
	ByePoints      float64

	// Object storage for standings snapshots. Export stays disabled when
	// these are unset.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from the environment, optionally seeded from a
// local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	presenceURL := os.Getenv("PRESENCE_SERVICE_URL")
	if presenceURL == "" {
		return nil, fmt.Errorf("PRESENCE_SERVICE_URL environment variable is not set")
	}
	gameURL := os.Getenv("GAME_SERVICE_URL")
	if gameURL == "" {
		return nil, fmt.Errorf("GAME_SERVICE_URL environment variable is not set")
	}

	byePoints := 1.0
	if byeStr := os.Getenv("BYE_POINTS"); byeStr != "" {
		byePoints, err = strconv.ParseFloat(byeStr, 64)
		if err != nil || byePoints <= 0 {
			return nil, fmt.Errorf("invalid BYE_POINTS environment variable: %q", byeStr)
		}
	}

	return &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		PresenceURL:       presenceURL,
		GameServiceURL:    gameURL,
		ByePoints:         byePoints,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

// SnapshotsConfigured reports whether R2 export credentials are present.
func (c *Config) SnapshotsConfigured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}
