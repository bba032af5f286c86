// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"research-paper-ai/internal/config"
	"research-paper-ai/internal/domain/ports/adapter"
	aiAdapters "research-paper-ai/internal/infra/adapters/ai"
	pg "research-paper-ai/internal/infra/db/postgres"
	"research-paper-ai/internal/infra/logging"
	"research-paper-ai/internal/infra/metrics"
	"research-paper-ai/internal/infra/progress"
	red "research-paper-ai/internal/infra/redis"
	tele "research-paper-ai/internal/infra/telegram"
	"research-paper-ai/internal/infra/web"
	"research-paper-ai/internal/infra/worker"
	"research-paper-ai/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop provider fallback, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	var paperRepo = pg.NewPaperRepoCacheDecorator(pg.NewPaperRepo(pool), redisClient, cfg.Redis.TTL)
	topicRepo := pg.NewTopicRepo(pool)
	stageLogRepo := pg.NewStageLogRepo(pool)

	// ---- Generation adapter (Anthropic -> Gemini -> OpenAI -> Noop in dev) ----
	byProvider := map[string]adapter.GenerationAdapter{}
	defaultProvider := ""
	if cfg.AI.AnthropicKey != "" {
		a, err := aiAdapters.NewAnthropicAdapter(cfg.AI.AnthropicKey, cfg.AI.AnthropicURL, cfg.AI.DefaultModel, cfg.AI.MaxTokens, cfg.AI.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("anthropic adapter")
		}
		byProvider["anthropic"] = a
		defaultProvider = "anthropic"
		log.Info().Str("model", cfg.AI.DefaultModel).Msg("provider: anthropic")
	}
	if cfg.AI.GeminiKey != "" {
		a, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxTokens)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini adapter")
		}
		byProvider["gemini"] = a
		if defaultProvider == "" {
			defaultProvider = "gemini"
		}
		log.Info().Msg("provider: gemini")
	}
	if cfg.AI.OpenAIKey != "" {
		a, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatal().Err(err).Msg("openai adapter")
		}
		byProvider["openai"] = a
		if defaultProvider == "" {
			defaultProvider = "openai"
		}
		log.Info().Msg("provider: openai")
	}
	if len(byProvider) == 0 {
		if !cfg.Runtime.Dev {
			log.Fatal().Msgf("no generation provider configured: set ai.anthropic_key, ai.gemini_key or ai.openai_key in %s", *cfgPath)
		}
		byProvider["noop"] = aiAdapters.NewNoopAdapter()
		defaultProvider = "noop"
		log.Warn().Msg("provider: noop (dev)")
	}
	var ai adapter.GenerationAdapter = aiAdapters.NewMultiAdapter(defaultProvider, cfg.AI.DefaultModel, byProvider, cfg.AI.ModelProviders)
	ai = aiAdapters.NewLimitedGeneration(ai, cfg.AI.ConcurrentLimit)

	// ---- Notifier ----
	var notifier adapter.CompletionNotifier = tele.NoopNotifier{}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		n, err := tele.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		if err != nil {
			log.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier = n
		}
	}

	// ---- Pipeline ----
	hub := progress.NewHub(log)
	engine := usecase.NewEngine(paperRepo, topicRepo, stageLogRepo, ai, hub, notifier, cfg.Pipeline, log)
	jobPool := worker.NewPool(cfg.Pipeline.Workers, log)
	jobPool.Start(ctx)
	defer jobPool.Stop()

	// ---- Use cases ----
	paperUC := usecase.NewPaperUseCase(paperRepo, topicRepo, stageLogRepo, engine, jobPool, log)
	topicUC := usecase.NewTopicUseCase(topicRepo, log)

	// ---- HTTP ----
	metrics.MustRegister()
	auth := web.NewAuthManager(cfg.Server.AdminSecret, 30*time.Minute)
	srv := web.NewServer(paperUC, topicUC, hub, auth, rateLimiter, cfg.Server.RateLimit, cfg.Server.RateWindow, log)
	router := srv.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
