package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	APIBaseURL     string
	StatePath      string
	StateSecret    string
	LogLevel       string
	RequestTimeout time.Duration

	// Chatbot query throttling (client side, so a stuck Enter key
	// does not hammer the backend).
	ChatRateEvery time.Duration
	ChatRateBurst int
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	stateSecret := getEnv("STATE_SECRET", "niveshpath-local-state-secret-change-me")
	if stateSecret == "niveshpath-local-state-secret-change-me" {
		log.Println("WARNING: Using default insecure STATE_SECRET. The stored credential is only as safe as this value. Set STATE_SECRET in the environment.")
	}

	Cfg = &AppConfig{
		APIBaseURL:     getEnv("NIVESHPATH_API_URL", "http://localhost:8080/api"),
		StatePath:      getEnv("STATE_PATH", "./niveshpath.db"),
		StateSecret:    stateSecret,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 20*time.Second),
		ChatRateEvery:  getEnvAsDuration("CHAT_RATE_EVERY", 2*time.Second),
		ChatRateBurst:  getEnvAsInt("CHAT_RATE_BURST", 3),
	}

	log.Printf("Configuration loaded: APIBaseURL=%s, LogLevel=%s, StatePath=%s",
		Cfg.APIBaseURL, Cfg.LogLevel, Cfg.StatePath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
