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
	Keys     APIKeys
	Ai       AIConfig
	Loop     LoopConfig
	Ingest   IngestConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string // empty = claims are read without signature validation
}

type DatabaseConfig struct {
	Connection      string
	EvidenceStore   string // "postgres" or "memory"
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Groq         string
	Anthropic    string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama", "gemini", "jina" or "openai"
	OllamaBaseURL        string
	OllamaModel          string
	OpenAIEmbeddingModel string
	EmbeddingCache       string // "memory" or "redis"
	EmbeddingCacheTTL    time.Duration
	RedisURL             string
	LLMProvider          string // "ollama", "openai", "groq", "anthropic", "gemini"
	LLMModel             string
	LLMBaseURL           string
	LLMRateLimit         float64 // requests per second, 0 disables
	LLMRateBurst         int
}

type LoopConfig struct {
	MaxAttempts      int
	RetrievalLimit   int
	MatchThreshold   float64
	RetrievalTimeout time.Duration
	DraftTimeout     time.Duration
	VerifyTimeout    time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

type IngestConfig struct {
	Transport    string // "gochannel" or "nats"
	NatsURL      string
	Topic        string
	ChunkSize    int
	ChunkOverlap int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	dsn := getEnv("DB_CONNECTION_STRING", "")
	evidenceStore := getEnv("EVIDENCE_STORE", "postgres")
	if dsn == "" {
		evidenceStore = "memory"
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/axiom.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://lexpertz.ai"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:      dsn,
			EvidenceStore:   evidenceStore,
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingCache:       getEnv("EMBEDDING_CACHE", "memory"),
			EmbeddingCacheTTL:    getEnvAsDuration("EMBEDDING_CACHE_TTL", 30*time.Minute),
			RedisURL:             getEnv("REDIS_URL", "localhost:6379"),
			LLMProvider:          getEnv("LLM_PROVIDER", "groq"),
			LLMModel:             getEnv("LLM_MODEL", "llama3-70b-8192"),
			LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
			LLMRateLimit:         getEnvAsFloat("LLM_RATE_LIMIT", 5),
			LLMRateBurst:         getEnvAsInt("LLM_RATE_BURST", 10),
		},
		Loop: LoopConfig{
			MaxAttempts:      getEnvAsInt("VERIFY_MAX_ATTEMPTS", 3),
			RetrievalLimit:   getEnvAsInt("RETRIEVAL_LIMIT", 4),
			MatchThreshold:   getEnvAsFloat("MATCH_THRESHOLD", 0.7),
			RetrievalTimeout: getEnvAsDuration("RETRIEVAL_TIMEOUT", 10*time.Second),
			DraftTimeout:     getEnvAsDuration("DRAFT_TIMEOUT", 60*time.Second),
			VerifyTimeout:    getEnvAsDuration("VERIFY_TIMEOUT", 60*time.Second),
		},
		Ingest: IngestConfig{
			Transport:    getEnv("INGEST_TRANSPORT", "gochannel"),
			NatsURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			Topic:        getEnv("INGEST_TOPIC", "EMBED_DOCUMENT"),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
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

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
