package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	apperrors "github.com/farmashop/pricingapi/pkg/errors"
)

// Candidate names for columns and tables that have drifted between
// deployments of the catalog schema. The first name found wins.
var (
	articleIDColumns = []string{"IdArticulo", "idarticulo"}
	brandTableNames  = []string{"marcas", "Marcas"}
)

const (
	articleNameColumn      = "nombre"
	articleBrandTextColumn = "marca"
	articleBrandIDColumn   = "marca_id"
	articleSKUColumn       = "sku"
)

// schemaCache probes the catalog schema once per process and hands out an
// immutable descriptor to every query builder. The article and brand tables
// belong to the catalog subsystem and are read-only here.
type schemaCache struct {
	db           *sql.DB
	logger       *zap.Logger
	articleTable string

	mu         sync.Mutex
	columns    map[string]struct{} // nil until probed successfully
	brandTable string              // "" until probed successfully
}

func newSchemaCache(db *sql.DB, articleTable string, logger *zap.Logger) *schemaCache {
	return &schemaCache{
		db:           db,
		logger:       logger,
		articleTable: articleTable,
	}
}

// articleColumns returns the set of column names on the article table. The
// result is cached after the first successful probe. On probe failure it
// returns an empty set so every "has this column" check degrades to false
// instead of failing the page.
func (s *schemaCache) articleColumns(ctx context.Context) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.columns != nil {
		return s.columns
	}

	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`

	rows, err := s.db.QueryContext(ctx, query, s.articleTable)
	if err != nil {
		s.logger.Warn("Failed to probe article columns", zap.String("table", s.articleTable), zap.Error(err))
		return map[string]struct{}{}
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			s.logger.Warn("Failed to scan article column name", zap.Error(err))
			return map[string]struct{}{}
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("Failed to read article columns", zap.Error(err))
		return map[string]struct{}{}
	}

	if len(columns) > 0 {
		s.columns = columns
	}
	return columns
}

// brandTableName resolves which casing the brand table uses by running a
// trivial probe query against each candidate. The first name that answers is
// cached for the process lifetime. If every candidate fails the error
// propagates so the caller can surface it.
func (s *schemaCache) brandTableName(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.brandTable != "" {
		return s.brandTable, nil
	}

	var lastErr error
	for _, name := range brandTableNames {
		probe := fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, quoteIdent(name))
		if _, err := s.db.ExecContext(ctx, probe); err != nil {
			lastErr = err
			continue
		}
		s.brandTable = name
		return name, nil
	}

	return "", &apperrors.ErrSchemaProbe{Table: "marcas", Cause: lastErr}
}

// descriptor builds the immutable capability descriptor consumed by the query
// builders. The brand table is resolved best-effort; an unresolved table just
// means no brand join.
func (s *schemaCache) descriptor(ctx context.Context) domain.ArticleSchema {
	columns := s.articleColumns(ctx)

	has := func(name string) bool {
		_, ok := columns[name]
		return ok
	}

	schema := domain.ArticleSchema{IDColumn: articleIDColumns[len(articleIDColumns)-1]}
	for _, candidate := range articleIDColumns {
		if has(candidate) {
			schema.IDColumn = candidate
			break
		}
	}
	if has(articleNameColumn) {
		schema.NameColumn = articleNameColumn
	}
	if has(articleBrandTextColumn) {
		schema.BrandTextColumn = articleBrandTextColumn
	}
	if has(articleBrandIDColumn) {
		schema.BrandIDColumn = articleBrandIDColumn
	}
	if has(articleSKUColumn) {
		schema.SKUColumn = articleSKUColumn
	}

	if schema.BrandIDColumn != "" && schema.BrandTextColumn == "" {
		if table, err := s.brandTableName(ctx); err == nil {
			schema.BrandTable = table
		}
	}

	return schema
}

// quoteIdent quotes a SQL identifier so mixed-case legacy names survive
// postgres folding.
func quoteIdent(name string) string {
	return `"` + name + `"`
}
