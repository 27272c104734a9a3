package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/m0nesy/f1kz-be/internal/ai"
	"github.com/m0nesy/f1kz-be/internal/api"
	"github.com/m0nesy/f1kz-be/internal/config"
	"github.com/m0nesy/f1kz-be/internal/database"
	"github.com/m0nesy/f1kz-be/internal/f1api"
	"github.com/m0nesy/f1kz-be/internal/logger"
	"github.com/m0nesy/f1kz-be/internal/monitoring"
	"github.com/m0nesy/f1kz-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up external clients
	f1Client := f1api.New(cfg.F1APIBase)
	aiClient := ai.New(ai.Options{
		BaseURL:    cfg.GeminiAPIBase,
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
	})

	// Set up services
	userService := services.NewUserService(db)
	newsService := services.NewNewsService(aiClient, time.Hour)

	// Optionally run the background news refresher
	var refresher *monitoring.NewsRefresher
	if cfg.NewsRefreshCron != "" {
		refresher, err = monitoring.NewNewsRefresher(newsService, cfg.NewsRefreshCron)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up news refresher")
		}
		go refresher.Run()
	}

	// Set up router
	router := api.NewRouter(api.Options{
		UserService: userService,
		NewsService: newsService,
		F1Client:    f1Client,
		AIClient:    aiClient,
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: []string{cfg.FrontendOrigin},
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
