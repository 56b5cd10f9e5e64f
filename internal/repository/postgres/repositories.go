package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/config"
	"github.com/farmashop/pricingapi/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, cfg config.CatalogConfig, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Tariff:        NewTariffRepository(db, cfg.TariffTable, logger),
		Article:       NewArticleRepository(db, cfg.ArticleTable, cfg.PriceTable, logger),
		Brand:         NewBrandRepository(db, cfg.ArticleTable, logger),
		PriceOverride: NewPriceOverrideRepository(db, cfg.PriceTable, logger),
	}
}
