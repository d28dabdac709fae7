package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"boxbox/pkg/agent"
	"boxbox/pkg/api"
	"boxbox/pkg/config"
	"boxbox/pkg/generator"
	"boxbox/pkg/logging"
	"boxbox/pkg/openrouter"
	"boxbox/pkg/prompts"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		bootLog := logging.Component("main")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Setup(cfg.LogLevel)
	log := logging.Component("main")

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on environment variables")
	}

	apiKeys := os.Getenv("OPENROUTER_API_KEY")
	if apiKeys == "" {
		log.Fatal().Msg("missing required environment variable: OPENROUTER_API_KEY")
	}

	// Template registry: built-in catalog plus optional operator file
	registry := prompts.NewRegistry()
	if err := prompts.LoadFile(registry, cfg.TemplatesFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load templates file")
	}

	model := openrouter.NewClient(
		apiKeys,
		cfg.ModelSettings.Temperature,
		cfg.ModelSettings.TopP,
		cfg.ModelSettings.Models,
	)

	engine := generator.New(prompts.NewRenderer(registry), model, generator.Options{
		MaxLength:          cfg.Generation.MaxLength,
		NumReturnSequences: cfg.Generation.NumReturnSequences,
		EnableFallback:     cfg.Generation.EnableFallback,
	})

	driver := agent.New(engine)
	server := api.NewServer(cfg.Server.Addr, driver, registry)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("boxbox is running, press CTRL-C to exit")

	// Wait for signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
