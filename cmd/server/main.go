package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edumate/internal/ai"
	"edumate/internal/api"
	"edumate/internal/auth"
	"edumate/internal/config"
	"edumate/internal/db"
	"edumate/internal/study"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting server", "name", cfg.Server.Name)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	accountRepo := db.NewAccountRepository(database)
	profileRepo := db.NewProfileRepository(database)
	rememberTokenRepo := db.NewRememberTokenRepository(database)
	studyPlanRepo := db.NewStudyPlanRepository(database)
	quizResultRepo := db.NewQuizResultRepository(database)

	cleanupService := db.NewCleanupService(rememberTokenRepo)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go cleanupService.Start(cleanupCtx)

	authService := auth.NewService(accountRepo, profileRepo, rememberTokenRepo, cfg.Auth.RememberTokenTTL)
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	generator := ai.NewGeminiClient(cfg.AI.GeminiBaseURL, cfg.AI.GeminiModel, cfg.AI.GeminiAPIKey)

	var searcher ai.Searcher = ai.NoSearch{}
	if cfg.AI.SearchURL != "" {
		searcher = ai.NewSearchClient(cfg.AI.SearchURL)
		slog.Info("content search configured", "url", cfg.AI.SearchURL, "top_k", cfg.AI.SearchTopK)
	} else {
		slog.Info("content search not configured, generating without course content")
	}

	planner := study.NewPlanner(generator, searcher, profileRepo, studyPlanRepo, cfg.AI.SearchTopK)
	flashcards := study.NewFlashcards(generator, searcher, quizResultRepo, cfg.AI.SearchTopK)

	server := api.NewServer(cfg, database, accountRepo, authService, jwtService, planner, flashcards)

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
