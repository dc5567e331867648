package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	LLMProvider  string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIAPIKey string
	EmbedModel   string
	GenModel     string

	// Summarization strategy: "mapreduce", "refine" or "stuff".
	SummaryStrategy  string
	SummaryChunkSize int
	SummaryOverlap   int

	IngestTargetTokens  int
	IngestOverlapTokens int
	IngestBatchSize     int

	Port string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "refsage-attachments"),

		LLMProvider:  getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),

		SummaryStrategy:  getEnv("SUMMARY_STRATEGY", "mapreduce"),
		SummaryChunkSize: getEnvInt("SUMMARY_CHUNK_SIZE", 12000),
		SummaryOverlap:   getEnvInt("SUMMARY_OVERLAP", 500),

		IngestTargetTokens:  getEnvInt("INGEST_TARGET_TOKENS", 500),
		IngestOverlapTokens: getEnvInt("INGEST_OVERLAP_TOKENS", 50),
		IngestBatchSize:     getEnvInt("INGEST_BATCH_SIZE", 16),

		Port: getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
