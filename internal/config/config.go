package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
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
	IngestTopicName    string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama", "gemini", "openai" or "jina"
	EmbeddingModel     string
	EmbeddingDimension int
	MaxEmbedChars      int // oversized embed input is cut here, never dropped
	LLMProvider        string // "ollama", "openai" or "huggingface"
	LLMModel           string
	OllamaBaseURL      string
	OpenAIBaseURL      string
	OpenAIAPIKey       string
	GoogleGeminiKey    string
	JinaAPIKey         string
	HuggingFaceAPIKey  string
	Temperature        float64
	MaxTokens          int
	TopP               float64
	ContextTokenBudget int
	MaxQueryLength     int
	ProviderTimeoutSec int
	MaxRetries         int
	RetryBaseDelayMs   int
	ChunkSize          int
	ChunkOverlap       int
}

type SessionConfig struct {
	Store        string // "memory" or "redis"
	TTLMinutes   int
	SweepMinutes int
	HistoryLimit int
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
			IngestTopicName:    getEnv("INGEST_CHUNKS_TOPIC_NAME", "INGEST_CHUNKS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			MaxEmbedChars:      getEnvAsInt("MAX_EMBED_CHARS", 8000),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			GoogleGeminiKey:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:         getEnv("JINA_API_KEY", ""),
			HuggingFaceAPIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:          getEnvAsInt("LLM_MAX_TOKENS", 1000),
			TopP:               getEnvAsFloat("LLM_TOP_P", 0.9),
			ContextTokenBudget: getEnvAsInt("CONTEXT_TOKEN_BUDGET", 6000),
			MaxQueryLength:     getEnvAsInt("MAX_QUERY_LENGTH", 2000),
			ProviderTimeoutSec: getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60),
			MaxRetries:         getEnvAsInt("PROVIDER_MAX_RETRIES", 3),
			RetryBaseDelayMs:   getEnvAsInt("PROVIDER_RETRY_BASE_DELAY_MS", 1000),
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1500),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Session: SessionConfig{
			Store:        getEnv("SESSION_STORE", "memory"),
			TTLMinutes:   getEnvAsInt("SESSION_TTL_MINUTES", 60),
			SweepMinutes: getEnvAsInt("SESSION_SWEEP_MINUTES", 10),
			HistoryLimit: getEnvAsInt("SESSION_HISTORY_LIMIT", 10),
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
