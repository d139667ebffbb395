package main

import (
	"log"
	"os"

	"math-agent-be/internal/model"
	"math-agent-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, database.Options{Verbose: true})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: pgvector extension is required: %v", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.KnowledgePassage{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// HNSW keeps similarity search fast once the knowledge base grows past a few thousand rows
	log.Println("Step 3: Creating vector index...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_knowledge_passages_embedding
		ON knowledge_passages USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("Success: Database migration completed.")
}
