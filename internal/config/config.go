package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Deepgram  DeepgramConfig
	Oracle    OracleConfig
	Recording RecordingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TranscriptTopic    string
}

type DatabaseConfig struct {
	Connection string
}

type DeepgramConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OracleConfig struct {
	BaseURL string
}

type RecordingConfig struct {
	SampleRate         int
	AutosaveInterval   time.Duration
	ReconcileInterval  time.Duration
	SilenceTimeoutEMS  time.Duration
	SilenceTimeoutFire time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TranscriptTopic:    getEnv("TRANSCRIPT_UPDATED_TOPIC_NAME", "TRANSCRIPT_UPDATED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Deepgram: DeepgramConfig{
			APIKey:  getEnv("DEEPGRAM_API_KEY", ""),
			BaseURL: getEnv("DEEPGRAM_BASE_URL", "https://api.deepgram.com/v1"),
			Model:   getEnv("DEEPGRAM_MODEL", "nova-2"),
		},
		Oracle: OracleConfig{
			BaseURL: getEnv("ORACLE_BASE_URL", "https://toolkit.rork.com"),
		},
		Recording: RecordingConfig{
			SampleRate:         getEnvAsInt("AUDIO_SAMPLE_RATE", 16000),
			AutosaveInterval:   getEnvAsDuration("AUTOSAVE_INTERVAL", 5*time.Second),
			ReconcileInterval:  getEnvAsDuration("CHECKLIST_INTERVAL", 10*time.Second),
			SilenceTimeoutEMS:  getEnvAsDuration("SILENCE_TIMEOUT_EMS", 5*time.Second),
			SilenceTimeoutFire: getEnvAsDuration("SILENCE_TIMEOUT_FIRE", 3*time.Second),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
