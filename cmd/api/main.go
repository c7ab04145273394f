package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/config"
	"github.com/ornastudio/ornament-backend/internal/db"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
	"github.com/ornastudio/ornament-backend/internal/repository"
	"github.com/ornastudio/ornament-backend/internal/server"
	"github.com/ornastudio/ornament-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	var backend ai.Backend
	if cfg.GeminiAPIKey != "" {
		backend = ai.NewRemoteService(cfg.GeminiAPIKey, cfg.GeminiImageModel,
			time.Duration(cfg.GenerationTimeoutSeconds)*time.Second)
	} else {
		log.Printf("GEMINI_API_KEY not set; remote generation disabled, local fallback only")
		backend = ai.NewLocalFallbackOnly()
	}

	store, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, cfg.StorageCredsFile)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	srv := server.New(nil, cfg, backend, store)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.PromptTemplate{},
			&model.GenerationNode{},
			&model.Project{},
			&model.Collection{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}

		promptRepo := repository.NewPromptTemplateRepository(conn)
		created, existing, err := prompt.Seed(ctx, promptRepo, prompt.DefaultDefinitions(), "system")
		if err != nil {
			log.Printf("prompt seed error: %v", err)
			return
		}
		log.Printf("[seed] done created=%d existing=%d", created, existing)
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
