package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aperturesearch/portfolio/internal/api"
	"github.com/aperturesearch/portfolio/internal/config"
	"github.com/aperturesearch/portfolio/internal/llm"
	"github.com/aperturesearch/portfolio/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.LoadSectionOverrides(); err != nil {
		log.Error("invalid section overrides", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := llm.NewStats(15 * time.Minute)

	// Per-run provider/key overrides come through the factory; an empty
	// key means the server-configured one.
	factory := func(provider, apiKey string) (llm.Client, error) {
		switch provider {
		case "anthropic":
			if apiKey == "" {
				apiKey = cfg.AnthropicAPIKey
			}
			if apiKey == "" {
				return nil, fmt.Errorf("no anthropic api key configured")
			}
			return llm.NewAnthropicClient(apiKey, cfg.AnthropicModel, stats), nil
		case "openai":
			if apiKey == "" {
				apiKey = cfg.OpenAIAPIKey
			}
			if apiKey == "" {
				return nil, fmt.Errorf("no openai api key configured")
			}
			return llm.NewOpenAIClient(apiKey, cfg.OpenAIModel, stats), nil
		}
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	orch := pipeline.NewOrchestrator(cfg, factory, log)
	orch.Start(ctx)

	model := cfg.AnthropicModel
	if cfg.Provider == "openai" {
		model = cfg.OpenAIModel
	}
	srv := api.NewServer(orch, stats, model, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting portfolio service", "port", cfg.Port, "provider", cfg.Provider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
