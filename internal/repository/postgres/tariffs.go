package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/pkg/errors"
)

type tariffRepository struct {
	db     *sql.DB
	logger *zap.Logger
	table  string
}

// NewTariffRepository creates a new tariff repository over the configured
// tariff catalog table.
func NewTariffRepository(db *sql.DB, table string, logger *zap.Logger) *tariffRepository {
	return &tariffRepository{
		db:     db,
		logger: logger,
		table:  table,
	}
}

const tariffColumns = `id, nombre, activa, fecha_inicio, fecha_fin, observaciones, created_at, updated_at`

// selectQuery builds a tariff SELECT with the given tail (WHERE/ORDER BY).
func (r *tariffRepository) selectQuery(tail string) string {
	return fmt.Sprintf("SELECT %s\n\t\tFROM %s\n\t\t%s", tariffColumns, quoteIdent(r.table), tail)
}

func (r *tariffRepository) List(ctx context.Context) ([]*domain.Tariff, error) {
	return r.queryTariffs(ctx, r.selectQuery(`ORDER BY nombre ASC`))
}

func (r *tariffRepository) GetByID(ctx context.Context, id domain.TariffID) (*domain.Tariff, error) {
	query := r.selectQuery(`WHERE id = $1`)

	tariff, err := r.scanTariff(r.db.QueryRowContext(ctx, query, int64(id)))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "tariff", ID: strconv.FormatInt(int64(id), 10)}
	}
	if err != nil {
		r.logger.Error("Failed to get tariff by ID", zap.Int64("tariff_id", int64(id)), zap.Error(err))
		return nil, err
	}

	return tariff, nil
}

func (r *tariffRepository) ListForReferenceSelector(ctx context.Context) ([]*domain.Tariff, error) {
	// The General tariff (id 0) sorts first so the "compare against" dropdown
	// always offers the base price at the top.
	return r.queryTariffs(ctx, r.selectQuery(`ORDER BY (id = 0) DESC, nombre ASC`))
}

func (r *tariffRepository) ListActive(ctx context.Context) ([]*domain.Tariff, error) {
	// Legacy rows imported from the old CRM can carry a zero-valued end date
	// instead of NULL; both mean "no end date".
	return r.queryTariffs(ctx, r.selectQuery(
		`WHERE activa = true AND (fecha_fin IS NULL OR fecha_fin <= '0001-01-01')
		ORDER BY (id = 0) DESC, nombre ASC`))
}

func (r *tariffRepository) Create(ctx context.Context, tariff *domain.Tariff) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (nombre, activa, fecha_inicio, fecha_fin, observaciones, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, quoteIdent(r.table))

	now := time.Now()
	if tariff.CreatedAt.IsZero() {
		tariff.CreatedAt = now
	}
	tariff.UpdatedAt = now

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		tariff.Name,
		tariff.Active,
		nullTime(tariff.StartDate),
		nullTime(tariff.EndDate),
		tariff.Notes,
		tariff.CreatedAt,
		tariff.UpdatedAt,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to create tariff", zap.Error(err))
		return err
	}

	tariff.ID = domain.TariffID(id)
	return nil
}

func (r *tariffRepository) Update(ctx context.Context, tariff *domain.Tariff) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET nombre = $2, activa = $3, fecha_inicio = $4, fecha_fin = $5, observaciones = $6, updated_at = $7
		WHERE id = $1
	`, quoteIdent(r.table))

	tariff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		int64(tariff.ID),
		tariff.Name,
		tariff.Active,
		nullTime(tariff.StartDate),
		nullTime(tariff.EndDate),
		tariff.Notes,
		tariff.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update tariff", zap.Int64("tariff_id", int64(tariff.ID)), zap.Error(err))
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "tariff", ID: strconv.FormatInt(int64(tariff.ID), 10)}
	}

	return nil
}

func (r *tariffRepository) queryTariffs(ctx context.Context, query string, args ...interface{}) ([]*domain.Tariff, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tariffs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var tariffs []*domain.Tariff
	for rows.Next() {
		tariff, err := r.scanTariff(rows)
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, tariff)
	}

	return tariffs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *tariffRepository) scanTariff(row rowScanner) (*domain.Tariff, error) {
	var tariff domain.Tariff
	var id int64
	var startDate, endDate sql.NullTime
	var notes sql.NullString

	err := row.Scan(
		&id,
		&tariff.Name,
		&tariff.Active,
		&startDate,
		&endDate,
		&notes,
		&tariff.CreatedAt,
		&tariff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tariff.ID = domain.TariffID(id)
	if startDate.Valid {
		tariff.StartDate = &startDate.Time
	}
	if endDate.Valid {
		tariff.EndDate = &endDate.Time
	}
	if notes.Valid {
		tariff.Notes = &notes.String
	}

	return &tariff, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
