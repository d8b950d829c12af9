package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Gutendex GutendexConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

type GutendexConfig struct {
	URL        string  // Базовый URL каталога Gutendex (endpoint /books)
	TimeoutSec int     // Таймаут HTTP запросов к каталогу
	RateLimit  float64 // Лимит исходящих запросов к каталогу, запросов в секунду
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий REVIEW_CREATED
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "gutendexer"),
		},
		Gutendex: GutendexConfig{
			URL:        getEnv("GUTENDEX_URL", "http://gutendex.com/books"),
			TimeoutSec: getEnvInt("GUTENDEX_TIMEOUT_SEC", 10),
			RateLimit:  getEnvFloat("GUTENDEX_RATE_LIMIT_RPS", 10),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
