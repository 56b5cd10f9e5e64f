package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
)

type articleRepository struct {
	db           *sql.DB
	logger       *zap.Logger
	schema       *schemaCache
	articleTable string
	priceTable   string
}

// NewArticleRepository creates a new article repository over the catalog's
// article table. The table is read-only here and its schema is probed at
// first use.
func NewArticleRepository(db *sql.DB, articleTable, priceTable string, logger *zap.Logger) *articleRepository {
	return &articleRepository{
		db:           db,
		logger:       logger,
		schema:       newSchemaCache(db, articleTable, logger),
		articleTable: articleTable,
		priceTable:   priceTable,
	}
}

func (r *articleRepository) Schema(ctx context.Context) (domain.ArticleSchema, error) {
	return r.schema.descriptor(ctx), nil
}

func (r *articleRepository) DatabaseName(ctx context.Context) (string, error) {
	var name string
	if err := r.db.QueryRowContext(ctx, `SELECT current_database()`).Scan(&name); err != nil {
		r.logger.Error("Failed to get database name", zap.Error(err))
		return "", err
	}
	return name, nil
}

func (r *articleRepository) ListMatrix(ctx context.Context, tariffID, refTariffID domain.TariffID, brandID *int64) ([]*domain.MatrixRow, error) {
	schema := r.schema.descriptor(ctx)
	query, args := matrixQueryArgs(schema, r.articleTable, r.priceTable, tariffID, refTariffID, brandID)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query price matrix",
			zap.Int64("tariff_id", int64(tariffID)),
			zap.Int64("ref_tariff_id", int64(refTariffID)),
			zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MatrixRow
	for rows.Next() {
		var row domain.MatrixRow
		var price, refPrice sql.NullFloat64

		if err := rows.Scan(&row.ArticleID, &row.Name, &row.Brand, &row.SKU, &price, &refPrice); err != nil {
			return nil, err
		}
		if price.Valid {
			row.Price = &price.Float64
		}
		if refPrice.Valid {
			row.RefPrice = &refPrice.Float64
		}

		result = append(result, &row)
	}

	return result, rows.Err()
}

// matrixQueryArgs pairs the matrix SELECT with its bound arguments. A brand
// filter is bound only when the schema actually has a brand id column;
// without one the filter degrades to the unfiltered grid instead of breaking
// the core query.
func matrixQueryArgs(schema domain.ArticleSchema, articleTable, priceTable string, tariffID, refTariffID domain.TariffID, brandID *int64) (string, []interface{}) {
	withBrandFilter := brandID != nil && schema.BrandIDColumn != ""
	query := buildMatrixQuery(schema, articleTable, priceTable, withBrandFilter)

	args := []interface{}{int64(tariffID), int64(refTariffID)}
	if withBrandFilter {
		args = append(args, *brandID)
	}
	return query, args
}

// buildMatrixQuery assembles the price grid SELECT from the probed schema:
// every article, a computed brand and name display column, and the edited and
// reference tariff prices via two left joins against the override table.
func buildMatrixQuery(schema domain.ArticleSchema, articleTable, priceTable string, withBrandFilter bool) string {
	idExpr := "a." + quoteIdent(schema.IDColumn)

	nameExpr := `''`
	if schema.NameColumn != "" {
		nameExpr = fmt.Sprintf(`COALESCE(a.%s, '')`, quoteIdent(schema.NameColumn))
	}

	// Brand display prefers the inline text column; falls back to a join
	// against the resolved brand table; falls back to empty.
	brandExpr := `''`
	brandJoin := ""
	switch {
	case schema.BrandTextColumn != "":
		brandExpr = fmt.Sprintf(`COALESCE(a.%s, '')`, quoteIdent(schema.BrandTextColumn))
	case schema.BrandIDColumn != "" && schema.BrandTable != "":
		brandExpr = `COALESCE(m.nombre, '')`
		brandJoin = fmt.Sprintf("\n\t\tLEFT JOIN %s m ON m.id = a.%s",
			quoteIdent(schema.BrandTable), quoteIdent(schema.BrandIDColumn))
	}

	skuExpr := `''`
	if schema.SKUColumn != "" {
		skuExpr = fmt.Sprintf(`COALESCE(a.%s::text, '')`, quoteIdent(schema.SKUColumn))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
		SELECT %s, %s, %s, %s, tp.precio, rp.precio
		FROM %s a`,
		idExpr, nameExpr, brandExpr, skuExpr, quoteIdent(articleTable))
	b.WriteString(brandJoin)
	fmt.Fprintf(&b, `
		LEFT JOIN %s tp ON tp.articulo_id = %s AND tp.tarifa_id = $1
		LEFT JOIN %s rp ON rp.articulo_id = %s AND rp.tarifa_id = $2`,
		quoteIdent(priceTable), idExpr, quoteIdent(priceTable), idExpr)

	if withBrandFilter && schema.BrandIDColumn != "" {
		fmt.Fprintf(&b, "\n\t\tWHERE a.%s = $3", quoteIdent(schema.BrandIDColumn))
	}

	fmt.Fprintf(&b, "\n\t\tORDER BY %s ASC", idExpr)
	return b.String()
}

func (r *articleRepository) ResolveIdentities(ctx context.Context, ids []int64, skus []string) (*domain.ArticleIdentity, error) {
	schema := r.schema.descriptor(ctx)
	if !schema.HasSKU() {
		// Without a SKU column there is nothing to remap and no cheap
		// existence check; the write path reports bad ids row by row.
		return nil, nil
	}

	if len(ids) == 0 && len(skus) == 0 {
		return &domain.ArticleIdentity{
			BySKU: map[string]int64{},
			ByID:  map[int64]int64{},
		}, nil
	}

	idExpr := "a." + quoteIdent(schema.IDColumn)
	skuExpr := "a." + quoteIdent(schema.SKUColumn)
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(%s::text, '')
		FROM %s a
		WHERE %s = ANY($1) OR %s::text = ANY($2)
	`, idExpr, skuExpr, quoteIdent(r.articleTable), idExpr, skuExpr)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), pq.Array(skus))
	if err != nil {
		r.logger.Error("Failed to resolve article identities", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	identity := &domain.ArticleIdentity{
		BySKU: make(map[string]int64),
		ByID:  make(map[int64]int64),
	}
	for rows.Next() {
		var id int64
		var sku string
		if err := rows.Scan(&id, &sku); err != nil {
			return nil, err
		}
		identity.ByID[id] = id
		if sku != "" {
			identity.BySKU[sku] = id
		}
	}

	return identity, rows.Err()
}
