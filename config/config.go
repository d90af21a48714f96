package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Auth       AuthConfig
	Database   DatabaseConfig
	Media      MediaConfig
	Events     EventsConfig
}

type AuthConfig struct {
	// JWTSecret signs every issued token. It has no default; the
	// server refuses to start without one.
	JWTSecret string

	// TokenTTLDays is how many days an issued token stays valid.
	TokenTTLDays int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// MediaConfig selects and configures the image storage backend.
// Backend is one of "minio", "gcs", or "" (media endpoints disabled).
type MediaConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// EventsConfig selects and configures the event broker. Backend is one
// of "rabbitmq", "pubsub", or "" (events disabled).
type EventsConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTLDays: getEnvInt("TOKEN_TTL_DAYS", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bounce"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "bounce_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Media: MediaConfig{
			Backend: getEnv("MEDIA_BACKEND", ""),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "bounce-media"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				Bucket:          getEnv("GCS_BUCKET", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", ""),
			RabbitMQ: RabbitMQConfig{
				URL:          getEnv("RABBITMQ_URL", ""),
				QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
