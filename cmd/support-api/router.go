// Package main provides the API router setup.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/cmd/support-api/handlers"
	"github.com/convodesk/support-engine/cmd/support-api/middleware"
	"github.com/convodesk/support-engine/internal/cache"
	"github.com/convodesk/support-engine/internal/chat"
	"github.com/convodesk/support-engine/internal/config"
	"github.com/convodesk/support-engine/internal/conversation"
	"github.com/convodesk/support-engine/internal/embedding"
	"github.com/convodesk/support-engine/internal/faq"
	"github.com/convodesk/support-engine/internal/genai"
	"github.com/convodesk/support-engine/internal/guardrail"
	"github.com/convodesk/support-engine/internal/match"
)

// NewRouter wires every dependency and returns the main API router plus
// a cleanup func for held resources.
func NewRouter(logger zerolog.Logger, cfg *config.Config) (http.Handler, func(), error) {
	cacheClient, err := newCache(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create cache: %w", err)
	}

	backend, err := faq.NewSQLBackend(cfg.DatabaseDriver(), cfg.DatabaseDSN())
	if err != nil {
		cacheClient.Close()
		return nil, nil, fmt.Errorf("open faq backend: %w", err)
	}
	store := faq.NewStore(backend, logger)

	cleanup := func() {
		backend.Close()
		cacheClient.Close()
	}

	rules := guardrail.DefaultRules()
	if cfg.Guardrails.RulesPath != "" {
		loaded, err := guardrail.LoadRules(cfg.Guardrails.RulesPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Rules file unreadable, using defaults")
		} else {
			rules = loaded
		}
	}

	history := conversation.NewBuffer(cacheClient, logger, conversation.BufferConfig{
		TTL:      cfg.Chat.HistoryTTL,
		MaxTurns: cfg.Chat.HistoryTurns * 2,
	})
	pipeline := guardrail.NewPipeline(rules, history, logger)

	lexical := match.NewLexicalMatcher()
	semantic := newSemanticMatcher(logger, cfg, store)
	matcher := match.NewMatcher(semantic, lexical, logger)

	generator := newGenerator(logger, cfg)

	service := chat.NewService(
		logger,
		store,
		matcher,
		pipeline,
		generator,
		chat.NewDeduper(cacheClient, cfg.Chat.DedupTTL),
		conversation.NewLock(cacheClient, cfg.Chat.LockTTL),
		history,
		chat.ServiceConfig{
			GenerateTimeout:  cfg.Generative.Timeout,
			LockWait:         cfg.Chat.LockTTL,
			FallbackMessages: rules.FallbackMessages,
			HistoryTurns:     cfg.Chat.HistoryTurns,
		},
	)

	chatHandler := handlers.NewChatHandler(logger, service)
	faqHandler := handlers.NewFAQHandler(logger, store, semantic)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"support-engine"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat/message", chatHandler.Message)

		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", faqHandler.List)
			r.Post("/", faqHandler.Add)
			r.Post("/import", faqHandler.Import)
			r.Get("/categories", faqHandler.Categories)
			r.Get("/categories/{name}", faqHandler.CategoryQuestions)
			r.Get("/{id}", faqHandler.Get)
			r.Put("/{id}", faqHandler.Update)
			r.Delete("/{id}", faqHandler.Delete)
		})
	})

	return r, cleanup, nil
}

func newCache(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}

// newSemanticMatcher builds the semantic matcher when an embedding
// provider is configured, nil otherwise. The system runs on the lexical
// matcher alone when this returns nil.
func newSemanticMatcher(logger zerolog.Logger, cfg *config.Config, store *faq.Store) *match.SemanticMatcher {
	if !cfg.Embedding.Enabled {
		return nil
	}

	embedder, err := embedding.NewClient(embedding.Config{
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Embedding client unavailable, lexical matching only")
		return nil
	}

	index := match.NewMemoryIndex(cfg.Embedding.Dimension)
	semantic := match.NewSemanticMatcher(embedder, index, logger, match.SemanticConfig{
		Threshold: cfg.Matching.SemanticThreshold,
		Limit:     cfg.Matching.SemanticLimit,
		Timeout:   cfg.Embedding.Timeout,
	})

	ctx := context.Background()
	if err := semantic.Sync(ctx, store.Load(ctx)); err != nil {
		logger.Warn().Err(err).Msg("Initial vector index sync failed")
	}
	return semantic
}

func newGenerator(logger zerolog.Logger, cfg *config.Config) genai.Generator {
	if cfg.Generative.APIKey == "" {
		logger.Warn().Msg("No generative API key, responses fall back to canned messages")
		return disabledGenerator{}
	}
	client, err := genai.NewClient(genai.Config{
		APIKey:  cfg.Generative.APIKey,
		Model:   cfg.Generative.Model,
		BaseURL: cfg.Generative.BaseURL,
		Timeout: cfg.Generative.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Generative client unavailable")
		return disabledGenerator{}
	}
	return client
}

// disabledGenerator always fails, which routes every generative path to
// the configured fallback messages.
type disabledGenerator struct{}

func (disabledGenerator) Generate(ctx context.Context, systemContext, userMessage string) (string, error) {
	return "", fmt.Errorf("%w: no provider configured", genai.ErrProvider)
}
