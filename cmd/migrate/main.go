package main

import (
	"log"
	"os"

	"content-advisor-be/internal/model"
	"content-advisor-be/pkg/database"

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

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate cannot create
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.ContentRecord{},
		&model.ContentEmbedding{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: vector index and JSONB index that GORM tags can't express
	log.Println("Step 3: Creating search indexes...")

	postMigrationSQL := []string{
		// IVFFlat cosine index for the semantic channel
		`CREATE INDEX IF NOT EXISTS idx_content_embeddings_value
		 ON content_embeddings USING ivfflat (embedding_value vector_cosine_ops) WITH (lists = 100);`,

		// GIN index over the category dimensions stored in JSONB
		`CREATE INDEX IF NOT EXISTS idx_content_records_categories
		 ON content_records USING gin (categories);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
