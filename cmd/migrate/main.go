package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"github.com/farmashop/pricingapi/internal/config"
	"github.com/farmashop/pricingapi/internal/repository/postgres"
)

// Applies every migrations/*.sql file in lexical order. Only the two tables
// owned by this service are migrated; the article and brand catalog tables
// belong to the CRM and are never touched.
func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list migrations: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Printf("No migrations found in %s\n", dir)
		return
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", file, err)
			os.Exit(1)
		}

		fmt.Printf("⏳ Applying %s...\n", file)
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply %s: %v\n", file, err)
			os.Exit(1)
		}
	}

	fmt.Printf("✅ Applied %d migration(s)\n", len(files))
}
