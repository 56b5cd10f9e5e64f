package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/config"
	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository/postgres"
	"github.com/farmashop/pricingapi/internal/service"
)

// Sets (or clears, with an empty -price) one article's override price on one
// tariff, going through the same reconciler as the dashboard bulk save.
func main() {
	godotenv.Load()

	tariffID := flag.Int64("tariff", -1, "tariff id (0 = General)")
	articleID := flag.Int64("article", 0, "article id")
	sku := flag.String("sku", "", "article SKU (wins over a stale id)")
	price := flag.String("price", "", "price, empty clears the override")
	flag.Parse()

	if *tariffID < 0 || *articleID <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: set-price -tariff <id> -article <id> [-sku <sku>] [-price <price>]")
		os.Exit(1)
	}

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
	reconciler := service.NewReconcilerService(repos, logger)

	key := strconv.FormatInt(*articleID, 10)
	req := service.BulkSaveRequest{
		Prices: map[string]string{key: *price},
		SKUs:   map[string]string{},
	}
	if *sku != "" {
		req.SKUs[key] = *sku
	}

	result, err := reconciler.Reconcile(context.Background(), domain.TariffID(*tariffID), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save price: %v\n", err)
		os.Exit(1)
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(os.Stderr, "❌ %s\n", result.Failures[0].String())
		os.Exit(1)
	}

	fmt.Printf("✅ inserted=%d updated=%d unchanged=%d skipped=%d remapped=%d\n",
		result.Inserted, result.Updated, result.Unchanged, result.Skipped, result.Remapped)
}
