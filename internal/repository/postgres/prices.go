package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	"github.com/farmashop/pricingapi/pkg/errors"
)

// priceLookupChunkSize bounds the IN-list size when loading stored overrides
// for a bulk save.
const priceLookupChunkSize = 500

type priceOverrideRepository struct {
	db     *sql.DB
	logger *zap.Logger
	table  string
}

// NewPriceOverrideRepository creates a new price override repository
func NewPriceOverrideRepository(db *sql.DB, table string, logger *zap.Logger) *priceOverrideRepository {
	return &priceOverrideRepository{
		db:     db,
		logger: logger,
		table:  table,
	}
}

func (r *priceOverrideRepository) GetPrice(ctx context.Context, tariffID domain.TariffID, articleID int64) (*domain.PriceOverride, error) {
	query := fmt.Sprintf(`
		SELECT tarifa_id, articulo_id, precio, updated_at
		FROM %s
		WHERE tarifa_id = $1 AND articulo_id = $2
	`, quoteIdent(r.table))

	var override domain.PriceOverride
	var tID int64

	err := r.db.QueryRowContext(ctx, query, int64(tariffID), articleID).Scan(
		&tID,
		&override.ArticleID,
		&override.Price,
		&override.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "price_override", ID: strconv.FormatInt(articleID, 10)}
	}
	if err != nil {
		r.logger.Error("Failed to get price override", zap.Error(err))
		return nil, err
	}

	override.TariffID = domain.TariffID(tID)
	return &override, nil
}

func (r *priceOverrideRepository) GetCentsByArticle(ctx context.Context, tariffID domain.TariffID, articleIDs []int64) (map[int64]int64, error) {
	stored := make(map[int64]int64, len(articleIDs))

	query := fmt.Sprintf(`
		SELECT articulo_id, precio
		FROM %s
		WHERE tarifa_id = $1 AND articulo_id = ANY($2)
	`, quoteIdent(r.table))

	for _, chunk := range chunkInt64s(articleIDs, priceLookupChunkSize) {
		rows, err := r.db.QueryContext(ctx, query, int64(tariffID), pq.Array(chunk))
		if err != nil {
			r.logger.Error("Failed to load stored override prices",
				zap.Int64("tariff_id", int64(tariffID)), zap.Error(err))
			return nil, err
		}

		for rows.Next() {
			var articleID int64
			var price float64
			if err := rows.Scan(&articleID, &price); err != nil {
				rows.Close()
				return nil, err
			}
			stored[articleID] = domain.PriceToCents(price)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return stored, nil
}

func (r *priceOverrideRepository) BeginBatch(ctx context.Context, tariffID domain.TariffID) (repository.PriceBatch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin price batch", zap.Error(err))
		return nil, err
	}

	return &priceBatch{
		tx:       tx,
		table:    r.table,
		tariffID: tariffID,
	}, nil
}

// priceBatch wraps one bulk save's writes in a transaction with a savepoint
// per row: a failing statement is rolled back to its savepoint so the rest of
// the batch can still commit.
type priceBatch struct {
	tx       *sql.Tx
	table    string
	tariffID domain.TariffID
	seq      int
}

func (b *priceBatch) Insert(ctx context.Context, articleID int64, cents int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tarifa_id, articulo_id, precio, updated_at)
		VALUES ($1, $2, $3, $4)
	`, quoteIdent(b.table))

	return b.exec(ctx, query, int64(b.tariffID), articleID, centsToPrice(cents), time.Now())
}

func (b *priceBatch) Update(ctx context.Context, articleID int64, cents int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET precio = $3, updated_at = $4
		WHERE tarifa_id = $1 AND articulo_id = $2
	`, quoteIdent(b.table))

	return b.exec(ctx, query, int64(b.tariffID), articleID, centsToPrice(cents), time.Now())
}

func (b *priceBatch) Delete(ctx context.Context, articleID int64) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE tarifa_id = $1 AND articulo_id = $2
	`, quoteIdent(b.table))

	return b.exec(ctx, query, int64(b.tariffID), articleID)
}

func (b *priceBatch) exec(ctx context.Context, query string, args ...interface{}) error {
	b.seq++
	savepoint := fmt.Sprintf("row_%d", b.seq)

	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return err
	}
	if _, err := b.tx.ExecContext(ctx, query, args...); err != nil {
		// Roll back only this row; the transaction stays usable.
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return rbErr
		}
		return err
	}
	_, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint)
	return err
}

func (b *priceBatch) Commit() error {
	return b.tx.Commit()
}

func (b *priceBatch) Rollback() error {
	return b.tx.Rollback()
}

func centsToPrice(cents int64) float64 {
	return float64(cents) / 100
}

func chunkInt64s(values []int64, size int) [][]int64 {
	if len(values) == 0 {
		return nil
	}
	var chunks [][]int64
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
