package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/niveshpath/client/src/api"
	"github.com/niveshpath/client/src/chat"
	"github.com/niveshpath/client/src/cli"
	"github.com/niveshpath/client/src/config"
	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/market"
	"github.com/niveshpath/client/src/onboarding"
	"github.com/niveshpath/client/src/security"
	"github.com/niveshpath/client/src/session"
	"github.com/niveshpath/client/src/storage"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Client starting", "api_base_url", config.Cfg.APIBaseURL)

	sealer, err := security.NewSealer(config.Cfg.StateSecret)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize credential sealer: %v", err)
	}

	store, err := storage.NewStore(config.Cfg.StatePath, sealer)
	if err != nil {
		log.Fatalf("FATAL: Failed to open local state at %s: %v", config.Cfg.StatePath, err)
	}
	defer store.Close()

	apiClient := api.NewClient(config.Cfg.APIBaseURL, config.Cfg.RequestTimeout, session.TokenSource(store))
	sessionManager := session.NewManager(apiClient, store)

	chatLimiter := rate.NewLimiter(rate.Every(config.Cfg.ChatRateEvery), config.Cfg.ChatRateBurst)
	app := &cli.App{
		Session:    sessionManager,
		Chat:       chat.NewCache(apiClient, store, chatLimiter),
		Market:     market.NewService(apiClient, nil),
		Onboarding: onboarding.NewController(apiClient, sessionManager),
		Store:      store,
		In:         os.Stdin,
		Out:        os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
