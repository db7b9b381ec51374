package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FilesConfig holds the upload policy enforced at reservation time.
// These are policy values, not protocol: changing them does not change the
// lifecycle state machine.
type FilesConfig struct {
	// MaxSizeBytes is the ceiling for a declared upload size.
	MaxSizeBytes int64
	// PresignExpirySec is how long issued upload/download URLs stay valid.
	PresignExpirySec int
}

// ReconcilerConfig holds the background sweep settings.
type ReconcilerConfig struct {
	// IntervalSec is the time between sweeps.
	IntervalSec int
	// StaleAfterSec is how long a record may sit in uploading before the
	// sweep forces it to failed. Must exceed the maximum allowed client
	// transfer time.
	StaleAfterSec int
	// BatchSize is the maximum number of stale rows handled per sweep.
	BatchSize int
}

// AuthConfig holds bearer-token validation settings.
type AuthConfig struct {
	// JWKSURL is the identity provider's signing-key endpoint.
	JWKSURL string
	// Audience is the expected aud claim; empty skips the audience check.
	Audience string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// CORSAllowedOrigins is the comma-separated browser origin allow-list;
	// "*" opens it up for development.
	CORSAllowedOrigins string
	Database           DatabaseConfig
	MinIO              MinIOConfig
	Files              FilesConfig
	Reconciler         ReconcilerConfig
	Auth               AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:            getEnv("APP_HOST", "localhost:8080"),
		Port:               getEnv("PORT", "8080"), // default only for non-sensitive value
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Files: FilesConfig{
			MaxSizeBytes:     getEnvInt64("FILES_MAX_SIZE_BYTES", 10*1024*1024),
			PresignExpirySec: getEnvInt("FILES_PRESIGN_EXPIRY_SEC", 3600),
		},
		Reconciler: ReconcilerConfig{
			IntervalSec:   getEnvInt("RECONCILER_INTERVAL_SEC", 60),
			StaleAfterSec: getEnvInt("RECONCILER_STALE_AFTER_SEC", 600),
			BatchSize:     getEnvInt("RECONCILER_BATCH_SIZE", 100),
		},
		Auth: AuthConfig{
			JWKSURL:  getEnv("AUTH_JWKS_URL", ""),
			Audience: getEnv("AUTH_AUDIENCE", "authenticated"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
