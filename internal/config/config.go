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
	Ai       AIConfig
	Pipeline PipelineConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "openai"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string // e.g. "llama3", "gpt-4o-mini"
	OpenAIBaseURL     string
	OpenAIApiKey      string
	GoogleGeminiKey   string
	EmbedTopic        string // watermill topic for record embedding jobs
}

// PipelineConfig carries the retrieval and assembly tuning knobs.
type PipelineConfig struct {
	StructuredK      int
	VectorK          int
	SimThreshold     float64
	ContextBudget    int
	EvidenceFraction float64
	MinEvidence      int
	HistoryTurns     int // turns handed to the interpreter for coreference
}

type SessionConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	MaxTurns        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			OpenAIApiKey:      getEnv("OPENAI_API_KEY", ""),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbedTopic:        getEnv("EMBED_RECORD_TOPIC_NAME", "EMBED_CONTENT_RECORD"),
		},
		Pipeline: PipelineConfig{
			StructuredK:      getEnvAsInt("RETRIEVAL_STRUCTURED_K", 20),
			VectorK:          getEnvAsInt("RETRIEVAL_VECTOR_K", 10),
			SimThreshold:     getEnvAsFloat("RETRIEVAL_SIM_THRESHOLD", 0.35),
			ContextBudget:    getEnvAsInt("CONTEXT_BUDGET", 3000),
			EvidenceFraction: getEnvAsFloat("CONTEXT_EVIDENCE_FRACTION", 0.7),
			MinEvidence:      getEnvAsInt("CONTEXT_MIN_EVIDENCE", 1),
			HistoryTurns:     getEnvAsInt("INTERPRETER_HISTORY_TURNS", 2),
		},
		Session: SessionConfig{
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
			MaxTurns:        getEnvAsInt("SESSION_MAX_TURNS", 10),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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
