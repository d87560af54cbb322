// Command coursemate is a course-aware study assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/ai"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/config/env"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/config/file"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/memory"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/postgres"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/sqlite"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/cli"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/services"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/pdf"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/plaintext"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(env.New(configStore), ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	svc := cli.Services{Settings: settingsService}
	app, err := build(ctx, settings)
	if err != nil {
		// Settings commands still work so the user can fix the problem.
		logger.Error("%v", err)
	} else {
		defer app.Close()
		svc.Assistant, svc.Ingest, svc.Library = app.assistant, app.ingest, app.library
	}

	cli.SetVersion(version)
	cli.SetServices(svc)
	return cli.Execute(ctx)
}

// application holds the services built from settings and what they own.
type application struct {
	store     driven.ChunkStore
	providers *ai.Clients

	assistant *services.AssistantService
	ingest    *services.IngestService
	library   *services.LibraryService
}

func build(ctx context.Context, settings *domain.AppSettings) (*application, error) {
	store, err := openStore(ctx, settings.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", settings.Store.Backend, err)
	}

	app := &application{store: store}

	var embedder driven.EmbeddingService
	var llm driven.LLMService
	providers, err := ai.Connect(ctx, *settings)
	if err != nil {
		// Listing and deleting documents needs no embedder.
		logger.Warn("%v", err)
	} else {
		app.providers = providers
		embedder, llm = providers.Embedding, providers.LLM
		for _, w := range providers.Warnings {
			logger.Warn("%s", w)
		}
	}

	r := settings.Retrieval
	p := settings.Providers
	index := services.NewCourseIndex(store, embedder, services.WithEmbedTimeout(p.Timeout))
	retriever := services.NewRetriever(index,
		services.WithTopK(r.TopK),
		services.WithSimilarityThreshold(r.SimilarityThreshold),
	)

	genOpts := []services.GeneratorOption{
		services.WithChatOptions(settings.LLM.Temperature, settings.LLM.MaxTokens),
		services.WithHistoryTurns(r.HistoryTurns),
		services.WithGenerationTimeouts(p.Timeout, p.StreamTimeout),
	}
	if prompts, err := file.NewPromptStore(""); err != nil {
		logger.Warn("Using built-in prompt: %v", err)
	} else {
		genOpts = append(genOpts, services.WithPromptStore(prompts))
	}
	generator := services.NewGenerator(retriever, llm, genOpts...)

	extractors := normalisers.NewRegistry(pdf.New(), plaintext.New())
	chunks := chunker.New(chunker.WithChunkSize(r.ChunkSize), chunker.WithOverlap(r.ChunkOverlap))

	app.assistant = services.NewAssistantService(index, generator)
	app.ingest = services.NewIngestService(extractors, chunks, index, settings.Ingest.Workers)
	app.library = services.NewLibraryService(index)
	return app, nil
}

func openStore(ctx context.Context, cfg domain.StoreSettings) (driven.ChunkStore, error) {
	switch cfg.Backend {
	case domain.StoreBackendMemory:
		return memory.NewChunkStore(), nil
	case domain.StoreBackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: store.postgres_dsn is not set", domain.ErrInvalidInput)
		}
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return sqlite.NewStore(cfg.DataDir)
	}
}

// Close releases the store and provider connections.
func (a *application) Close() {
	if a.providers != nil {
		a.providers.Close()
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Closing store: %v", err)
	}
}
