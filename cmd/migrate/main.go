package main

import (
	"context"
	"log"
	"os"

	"github.com/samirrijal/imoveis/internal/adapters/postgres"
	"github.com/samirrijal/imoveis/internal/pkg/config"
	"github.com/samirrijal/imoveis/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up>")
	}

	cfg, err := config.Load("imoveis-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.URL, 1)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("schema applied")
	case "down":
		// Listings are the only data this service owns; dropping them is left
		// to an operator with psql.
		log.Fatal("down migration is not supported")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
