package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/refsage/refsage/internal/config"
	"github.com/refsage/refsage/internal/core"
	db "github.com/refsage/refsage/internal/core/database"
	"github.com/refsage/refsage/internal/core/ingestion_engine"
	"github.com/refsage/refsage/internal/core/llm"
	objectclient "github.com/refsage/refsage/internal/core/object-client"
	"github.com/refsage/refsage/internal/core/summarizer"
	"github.com/refsage/refsage/internal/models"
	"github.com/refsage/refsage/internal/services"
)

type App struct {
	DBClient      core.DbClient
	ObjectClient  core.ObjectClient
	Ingestor      ingestion_engine.Ingestor
	SummaryWorker *services.SummaryWorker
	Server        *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmClient, err := newLLMClient(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM client: %w", err)
	}

	extractor := ingestion_engine.NewDocconvExtractor(false)

	ingCfg := &ingestion_engine.IngestConfig{
		TargetTokens:  cfg.IngestTargetTokens,
		OverlapTokens: cfg.IngestOverlapTokens,
		BatchSize:     cfg.IngestBatchSize,
	}
	ingestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, dbClient, embedder, extractor, ingCfg)
	ingestor.Start(ctx, 2)

	params := models.InferenceParameters{Model: cfg.GenModel}

	strategy, err := newSummarizer(cfg, params)
	if err != nil {
		return nil, err
	}
	summaryService := services.NewSummaryService(dbClient, llmClient, strategy, params)
	summaryWorker := services.NewSummaryWorker(summaryService, 64)
	summaryWorker.Start(ctx, 2)

	findParams, err := models.NewFindParameters().Build()
	if err != nil {
		return nil, err
	}
	chatService := services.NewChatService(dbClient, dbClient, embedder, llmClient, params, findParams)

	userService := services.NewUserService(dbClient)
	documentService := services.NewDocumentService(dbClient, objClient, cfg.BucketName)

	server := NewServer(cfg, userService, documentService, chatService, summaryWorker, dbClient, ingestor)

	return &App{
		DBClient:      dbClient,
		ObjectClient:  objClient,
		Ingestor:      ingestor,
		SummaryWorker: summaryWorker,
		Server:        server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (core.LLMClient, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.GenModel), nil
	case "gemini", "":
		return llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GenModel)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// newSummarizer assembles the configured strategy. MapReduce and Refine are
// composed from Stuff pieces: Stuff handles the per-chunk/per-section prompt
// and the strategies do the orchestration.
func newSummarizer(cfg *config.Config, params models.InferenceParameters) (summarizer.Summarizer, error) {
	stuff := summarizer.NewStuff(nil, params)
	switch cfg.SummaryStrategy {
	case "stuff":
		return stuff, nil
	case "refine":
		return summarizer.NewRefine(stuff, nil, params)
	case "mapreduce", "":
		return summarizer.NewMapReduce(stuff, stuff, cfg.SummaryChunkSize, cfg.SummaryOverlap)
	default:
		return nil, fmt.Errorf("unknown SUMMARY_STRATEGY %q", cfg.SummaryStrategy)
	}
}
