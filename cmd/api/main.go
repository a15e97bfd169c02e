package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/cache"
	"server/internal/expose"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/imaging"
	"server/internal/infra"
	"server/internal/providers/describe"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Transient staging area and its collaborators.
	store := cache.NewStore()
	ingestor := cache.NewIngestor(store, cfg.CacheDir, cfg.CacheBaseURL, logger)
	sweeper := cache.NewSweeper(store, cfg.CacheDir, logger)

	manager := expose.NewManager(store, newDescriber(cfg, logger), expose.Options{
		CacheDir:  cfg.CacheDir,
		StepDelay: cfg.StepDelay,
		Imaging:   imaging.Options{MaxDimension: cfg.MaxImageDim, Quality: cfg.ImageQuality},
		Logger:    logger,
	})
	defer manager.Close()

	app := &handlers.App{
		Store:    store,
		Ingestor: ingestor,
		Sweeper:  sweeper,
		Manager:  manager,
		Config:   cfg,
		Logger:   logger,
	}

	// Durable store is an optional collaborator; the pipeline runs without it.
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		app.Properties = repo.NewPropertyRepository(pool)
		app.Users = repo.NewUserRepository(pool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, durable property and auth routes disabled")
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newDescriber selects the text-generation collaborator: OpenAI when an API
// key is configured, always falling back to the static templates.
func newDescriber(cfg *infra.Config, logger infra.Logger) describe.Describer {
	static := describe.NewStaticDescriber()
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, using static description templates")
		return static
	}
	openai, err := describe.NewOpenAIDescriber(describe.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Fallback:     static,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("describe: falling back to static templates")
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("describe: openai unavailable, using static templates")
		return static
	}
	return openai
}
