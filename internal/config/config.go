package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	APIUrl      string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT (tokens are issued by the identity provider; we only verify)
	JWTSecret              string
	JWTAccessTokenDuration time.Duration

	// Local storage
	StorageRoot string

	// Uploads
	UploadMaxBytes  int64 // 0 = no limit
	UploadMaxPerDay int

	// Thumbnails
	FFmpegBin                 string
	FFprobeBin                string
	ThumbnailBackfillEnabled  bool
	ThumbnailBackfillInterval time.Duration

	// Description improver (OpenAI-compatible endpoint, e.g. LM Studio)
	DescriberEndpoint string
	DescriberModel    string
	DescriberTimeout  time.Duration

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		APIUrl:      getEnv("API_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "mediavault"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "mediavault_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),

		// Local storage
		StorageRoot: getEnv("STORAGE_ROOT", "/data/media"),

		// Uploads
		UploadMaxBytes:  getEnvAsInt64("UPLOAD_MAX_BYTES", 0),
		UploadMaxPerDay: getEnvAsInt("UPLOAD_MAX_PER_DAY", 200),

		// Thumbnails
		FFmpegBin:                 getEnv("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin:                getEnv("FFPROBE_BIN", "ffprobe"),
		ThumbnailBackfillEnabled:  getEnv("THUMBNAIL_BACKFILL_ENABLED", "true") == "true",
		ThumbnailBackfillInterval: getEnvAsDuration("THUMBNAIL_BACKFILL_INTERVAL", "5m"),

		// Description improver
		DescriberEndpoint: getEnv("DESCRIBER_ENDPOINT", ""),
		DescriberModel:    getEnv("DESCRIBER_MODEL", "llava-v1.5-7b"),
		DescriberTimeout:  getEnvAsDuration("DESCRIBER_TIMEOUT", "10s"),

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
