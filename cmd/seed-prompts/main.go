package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/ornastudio/ornament-backend/internal/config"
	"github.com/ornastudio/ornament-backend/internal/db"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/prompt"
	"github.com/ornastudio/ornament-backend/internal/repository"
)

func main() {
	systemUser := flag.String("user", "system", "user id recorded as creator of seeded templates")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(&model.PromptTemplate{}); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	repo := repository.NewPromptTemplateRepository(conn)
	created, existing, err := prompt.Seed(context.Background(), repo, prompt.DefaultDefinitions(), *systemUser)
	if err != nil {
		log.Fatalf("seed error: %v", err)
	}
	log.Printf("seed complete: created=%d existing=%d", created, existing)
}
