package main

import (
	"context"
	"flag"
	"log"
	"os"

	"math-agent-be/internal/bootstrap"
	"math-agent-be/internal/config"
	"math-agent-be/internal/dto"
	"math-agent-be/internal/entity"
	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/implementation"
	"math-agent-be/internal/repository/specification"
	"math-agent-be/internal/service"
	"math-agent-be/pkg/database"
	"math-agent-be/pkg/dataset"
)

func main() {
	path := flag.String("file", "data/math_dataset.json", "JSON array or JSON Lines file of {problem, solution}")
	recreate := flag.Bool("recreate", false, "empty the knowledge base before loading")
	batchSize := flag.Int("batch", 50, "passages embedded and stored per batch")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	embeddingProvider, err := bootstrap.NewEmbeddingProvider(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	records, err := dataset.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("Error: Failed to read %s: %v", *path, err)
	}
	if len(records) == 0 {
		log.Fatalf("Error: No documents were loaded from %s", *path)
	}

	ctx := context.Background()
	repo := implementation.NewKnowledgePassageRepository(db)

	if *recreate {
		log.Println("Emptying knowledge base...")
		if err := repo.Truncate(ctx); err != nil {
			log.Fatalf("Error: Failed to empty knowledge base: %v", err)
		}
	}

	knowledgeService := service.NewKnowledgeService(nil, repo, embeddingProvider, nil, nil, logger.NewConsoleLogger())

	items := make([]*dto.PublishKnowledgeMessage, 0, len(records))
	for _, r := range records {
		items = append(items, &dto.PublishKnowledgeMessage{
			Problem:  r.String("problem"),
			Solution: r.String("solution"),
			Origin:   entity.OriginSeed,
		})
	}

	log.Printf("Found %d documents. Embedding with %s...", len(items), cfg.Ai.EmbeddingProvider)

	stored := 0
	for start := 0; start < len(items); start += *batchSize {
		end := min(start+*batchSize, len(items))
		n, err := knowledgeService.Ingest(ctx, items[start:end])
		if err != nil {
			log.Fatalf("Error: Batch %d-%d failed: %v", start, end, err)
		}
		stored += n
		log.Printf("Progress: %d/%d", end, len(items))
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	seeded, err := repo.Count(ctx, specification.ByOrigin{Origin: entity.OriginSeed})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Printf("Success: %d new passages stored, knowledge base now holds %d (%d seeded).", stored, total, seeded)
}
