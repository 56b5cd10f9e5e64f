package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/config"
	"github.com/farmashop/pricingapi/internal/repository/postgres"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, cfg.Catalog, logger)

	tariffs, err := repos.Tariff.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list tariffs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Found %d tariff(s)\n\n", len(tariffs))
	fmt.Printf("%-6s %-30s %-8s %-12s %-12s\n", "ID", "NAME", "ACTIVE", "START", "END")
	for _, t := range tariffs {
		start, end := "-", "-"
		if t.StartDate != nil && !t.StartDate.IsZero() {
			start = t.StartDate.Format("2006-01-02")
		}
		if t.EndDate != nil && !t.EndDate.IsZero() {
			end = t.EndDate.Format("2006-01-02")
		}
		fmt.Printf("%-6d %-30s %-8t %-12s %-12s\n", t.ID, t.Name, t.IsCurrentlyActive(), start, end)
	}
}
