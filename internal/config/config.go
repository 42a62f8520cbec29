package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Rag      RagConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables the NATS event fan-out
	RedisURL           string // empty disables the job status cache
	EventTopic         string
}

type DatabaseConfig struct {
	Driver     string // "postgres" | "sqlite"
	Connection string
}

type AuthConfig struct {
	JwtSecret string
}

type RagConfig struct {
	BaseURL             string
	Timeout             time.Duration
	MaxUploadBytes      int64
	DefaultChunkSize    int
	DefaultChunkOverlap int
}

type CacheConfig struct {
	HealthTTL    time.Duration
	JobStatusTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventTopic:         getEnv("CHAT_EVENT_TOPIC_NAME", "CHAT_EVENTS"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", "default_secret"),
		},
		Rag: RagConfig{
			BaseURL:             getEnv("RAG_BASE_URL", "http://localhost:8000"),
			Timeout:             time.Duration(getEnvAsInt("RAG_TIMEOUT_SECONDS", 120)) * time.Second,
			MaxUploadBytes:      int64(getEnvAsInt("RAG_MAX_UPLOAD_MB", 50)) * 1024 * 1024,
			DefaultChunkSize:    getEnvAsInt("RAG_DEFAULT_CHUNK_SIZE", 800),
			DefaultChunkOverlap: getEnvAsInt("RAG_DEFAULT_CHUNK_OVERLAP", 150),
		},
		Cache: CacheConfig{
			HealthTTL:    time.Duration(getEnvAsInt("RAG_HEALTH_CACHE_SECONDS", 10)) * time.Second,
			JobStatusTTL: time.Duration(getEnvAsInt("RAG_JOB_CACHE_HOURS", 24)) * time.Hour,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
