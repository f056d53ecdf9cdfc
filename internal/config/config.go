package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Remote backends.
const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	TokenTTL      time.Duration
	RemoteBackend string
	RedisURL      string
	LocalDBPath   string
	LogFile       string
	CORSOrigins   []string
	// Sync tuning
	PushMaxAttempts     int
	PushBaseBackoff     time.Duration
	PullInterval        time.Duration
	ConnectivityTimeout time.Duration
	// Outer services, disabled when the key is empty
	GeminiAPIKey string
	GeminiURL    string
	TextbeltKey  string
	TextbeltURL  string
}

// Load reads .env if present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() Config {
	return Config{
		Port:                getenv("API_PORT", "8080"),
		MongoURI:            getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getenv("MONGO_DATABASE", "dentist"),
		JWTSecret:           getenv("JWT_SECRET", ""),
		TokenTTL:            time.Duration(getenvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RemoteBackend:       strings.ToLower(getenv("REMOTE_BACKEND", BackendMongo)),
		RedisURL:            getenv("REDIS_URL", "redis://localhost:6379/0"),
		LocalDBPath:         getenv("LOCAL_DB_PATH", "data/clinic.db"),
		LogFile:             getenv("LOG_FILE", ""),
		CORSOrigins:         splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		PushMaxAttempts:     getenvInt("PUSH_MAX_ATTEMPTS", 5),
		PushBaseBackoff:     time.Duration(getenvInt("PUSH_BASE_BACKOFF_MS", 1000)) * time.Millisecond,
		PullInterval:        time.Duration(getenvInt("PULL_INTERVAL_SECONDS", 0)) * time.Second,
		ConnectivityTimeout: time.Duration(getenvInt("CONNECTIVITY_TIMEOUT_MS", 3000)) * time.Millisecond,
		GeminiAPIKey:        getenv("GEMINI_API_KEY", ""),
		GeminiURL:           getenv("GEMINI_URL", ""),
		TextbeltKey:         getenv("TEXTBELT_KEY", ""),
		TextbeltURL:         getenv("TEXTBELT_URL", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
