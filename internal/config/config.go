package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port          string
	Environment   string
	DatabaseURL   string
	TablePrefix   string
	StoreDriver   string // "postgres" or "memory"
	AutoMigrate   bool
	SupabaseURL   string
	JWKSURL       string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	JWTSecret     string // HS256 secret for local tokens; used when SupabaseURL is empty
	CORSOrigins   string
	PublicBaseURL string
	// Blob storage
	BlobDriver     string // "local" or "minio"
	UploadDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	// Share link cache
	RedisURL      string
	ShareCacheTTL time.Duration
	// Logging
	LogFormat string // "json" or "console"
	LogDir    string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	var jwksURL string
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	port := getEnv("PORT", "8080")

	return &Config{
		Port:          port,
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		TablePrefix:   getTablePrefix(env),
		StoreDriver:   getEnv("STORE_DRIVER", defaultStoreDriver()),
		AutoMigrate:   getEnv("AUTO_MIGRATE", getDefaultDebug(env)) == "true",
		SupabaseURL:   supabaseURL,
		JWKSURL:       jwksURL,
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		// Blob storage
		BlobDriver:     getEnv("BLOB_DRIVER", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "dataroom"),
		MinIOUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		// Share link cache
		RedisURL:      getEnv("REDIS_URL", ""),
		ShareCacheTTL: getDuration("SHARE_CACHE_TTL", 5*time.Minute),
		// Logging
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogDir:    getEnv("LOG_DIR", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// UsesMemoryStore reports whether metadata lives in process memory
func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == "memory"
}

// defaultStoreDriver falls back to the memory store when no database is configured
func defaultStoreDriver() string {
	if os.Getenv("DATABASE_URL") == "" {
		return "memory"
	}
	return "postgres"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
