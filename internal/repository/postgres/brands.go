package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
)

type brandRepository struct {
	db     *sql.DB
	logger *zap.Logger
	schema *schemaCache
}

// NewBrandRepository creates a new brand repository. Brands only feed the
// optional filter dropdown, so every failure here degrades to an empty list.
func NewBrandRepository(db *sql.DB, articleTable string, logger *zap.Logger) *brandRepository {
	return &brandRepository{
		db:     db,
		logger: logger,
		schema: newSchemaCache(db, articleTable, logger),
	}
}

func (r *brandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	table, err := r.schema.brandTableName(ctx)
	if err != nil {
		r.logger.Warn("Brand table unavailable, selector will be empty", zap.Error(err))
		return []*domain.Brand{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, nombre
		FROM %s
		ORDER BY nombre ASC
	`, quoteIdent(table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Warn("Failed to list brands, selector will be empty", zap.Error(err))
		return []*domain.Brand{}, nil
	}
	defer rows.Close()

	var brands []*domain.Brand
	for rows.Next() {
		var brand domain.Brand
		if err := rows.Scan(&brand.ID, &brand.Name); err != nil {
			r.logger.Warn("Failed to scan brand row", zap.Error(err))
			return []*domain.Brand{}, nil
		}
		brands = append(brands, &brand)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn("Failed to read brand rows", zap.Error(err))
		return []*domain.Brand{}, nil
	}

	return brands, nil
}
