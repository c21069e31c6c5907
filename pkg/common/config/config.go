package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers          []string
	ProcessingEventsTopic string

	// Vision model
	VisionAPIKey       string
	VisionBaseURL      string
	VisionModel        string
	VisionTimeout      time.Duration
	VisionFieldCatalog string

	// SMTP
	SMTPServer   string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	EmailTo      string

	// Processing
	ResultCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 120*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 32*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "onboardflow"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "onboardflow123"),
		PostgresDB:       getEnv("POSTGRES_DB", "onboardflow"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		ProcessingEventsTopic: getEnv("PROCESSING_EVENTS_TOPIC", ""),

		VisionAPIKey:       getEnv("VISION_API_KEY", ""),
		VisionBaseURL:      getEnv("VISION_BASE_URL", "https://api.openai.com/v1"),
		VisionModel:        getEnv("VISION_MODEL_NAME", "gpt-4o-mini"),
		VisionTimeout:      getDuration("VISION_TIMEOUT", 60*time.Second),
		VisionFieldCatalog: getEnv("VISION_FIELD_CATALOG", ""),

		SMTPServer:   getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),
		EmailTo:      getEnv("EMAIL_TO", "onboarding-review@localhost"),

		ResultCacheTTL: getDuration("RESULT_CACHE_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
