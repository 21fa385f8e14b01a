package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"log"
	"os"

	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := db.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		log.Printf("migrate %s failed: %v", command, err)
		os.Exit(1)
	}
	log.Printf("migrate %s complete", command)
}
