package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the VidTube backend service.
type Config struct {
	AppPort        int
	MongoURI       string
	DatabaseName   string
	LogLevel       string
	CORSOrigins    []string
	CookieSecure   bool
	TrustProxy     bool
	MaxUploadBytes int64
	AuthRateLimit  int
	RateLimit      int
	Tokens         TokenConfig
	ObjectStore    ObjectStoreConfig
}

// TokenConfig holds signing secrets and lifetimes for session tokens.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// ObjectStoreConfig describes the S3-compatible bucket used for media uploads.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development. A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppPort:        getInt("VIDTUBE_PORT", 8000),
		MongoURI:       getString("VIDTUBE_MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:   getString("VIDTUBE_DB_NAME", "vidtube"),
		LogLevel:       getString("VIDTUBE_LOG_LEVEL", "info"),
		CORSOrigins:    getList("VIDTUBE_CORS_ORIGIN", []string{"*"}),
		CookieSecure:   getBool("VIDTUBE_COOKIE_SECURE", true),
		TrustProxy:     getBool("VIDTUBE_TRUST_PROXY", false),
		MaxUploadBytes: int64(getInt("VIDTUBE_MAX_UPLOAD_BYTES", 512<<20)),
		AuthRateLimit:  getInt("VIDTUBE_AUTH_RATE_LIMIT", 20),
		RateLimit:      getInt("VIDTUBE_RATE_LIMIT", 300),
		Tokens: TokenConfig{
			AccessSecret:  os.Getenv("VIDTUBE_ACCESS_TOKEN_SECRET"),
			AccessTTL:     getDuration("VIDTUBE_ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			RefreshSecret: os.Getenv("VIDTUBE_REFRESH_TOKEN_SECRET"),
			RefreshTTL:    getDuration("VIDTUBE_REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		},
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("VIDTUBE_S3_BUCKET", ""),
			Region:        getString("VIDTUBE_S3_REGION", "us-east-1"),
			Endpoint:      getString("VIDTUBE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("VIDTUBE_S3_PUBLIC_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports configuration that would make the service unusable.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Tokens.AccessSecret) == "" {
		problems = append(problems, "VIDTUBE_ACCESS_TOKEN_SECRET is required")
	}
	if strings.TrimSpace(c.Tokens.RefreshSecret) == "" {
		problems = append(problems, "VIDTUBE_REFRESH_TOKEN_SECRET is required")
	}
	if c.Tokens.AccessSecret != "" && c.Tokens.AccessSecret == c.Tokens.RefreshSecret {
		problems = append(problems, "access and refresh token secrets must differ")
	}
	if c.Tokens.AccessTTL <= 0 || c.Tokens.RefreshTTL <= 0 {
		problems = append(problems, "token expiries must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
