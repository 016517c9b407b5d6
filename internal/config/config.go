package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	GinMode          string
	MongoURI         string
	MongoDatabase    string
	RedisURL         string
	RabbitMQURI      string
	RabbitMQExchange string
	JWTSecret        string
	CORSOrigins      []string
	LogLevel         string
	DeviceCheck      bool
}

// Load reads configuration from a .env file (if present) and the process
// environment. MONGO_URI is the only required value.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "5000"),
		GinMode:          getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    getEnvOrDefault("MONGO_DATABASE", "lms_service"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RabbitMQURI:      os.Getenv("RABBITMQ_URI"),
		RabbitMQExchange: os.Getenv("RABBITMQ_EXCHANGE"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", "change-me"),
		CORSOrigins:      splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		DeviceCheck:      getEnvOrDefault("DEVICE_CHECK_ENABLED", "false") == "true",
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
