package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Gemini   GeminiConfig
	RabbitMQ RabbitMQConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type CatalogConfig struct {
	Path string
}

// Load builds the configuration from the environment. Call it after any
// .env file has been loaded.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnv("PORT", "8000"),
			ReadTimeout: getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			// Write timeout covers the in-request Gemini call.
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
			AllowOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "tutor_api"),
			PoolSize: getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "tutor.events"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("TOPICS_CSV_PATH", "./finance_topics_full.csv"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uint_val, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Printf("error retrieve uint64 env var: %s", err)
			return defaultValue
		}
		return uint_val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("error retrieve duration env var: %s", err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
