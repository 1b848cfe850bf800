package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/crewsight/nonengage/internal/bot"
	"github.com/crewsight/nonengage/internal/config"
	"github.com/crewsight/nonengage/internal/engage"
	"github.com/crewsight/nonengage/internal/logger"
	"github.com/crewsight/nonengage/internal/publisher"
	"github.com/crewsight/nonengage/internal/slack"
)

func main() {
	// 1. Load config (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting non-engager reporter")

	if cfg.SlackBotToken == "" {
		log.Fatal().Msg("SLACK_BOT_TOKEN is required")
	}
	if cfg.SlackSigningSecret == "" {
		log.Warn().Msg("SLACK_SIGNING_SECRET not set, request signature verification disabled")
	}

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Connect to NATS (optional)
	var pub bot.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			pub = publisher.NewNATSPublisher(nc)
		}
	}

	// 5. Wire the engine and dispatch layer
	client := slack.NewClient(slack.Config{
		Token:   cfg.SlackBotToken,
		BaseURL: cfg.SlackAPIBaseURL,
	})
	engine := engage.NewEngine(client, cfg.ExcludedUserIDs)
	reporter := bot.NewReporter(engine, client, pub, cfg.SummaryLimit)
	manager := bot.NewRunManager(reporter)
	handler := bot.NewHandler(manager)
	router := bot.NewRouter(handler, cfg.SlackSigningSecret)

	// 6. Serve
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("http server listening")
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("stopped")
}
