package repository

import (
	"context"

	"github.com/farmashop/pricingapi/internal/domain"
)

// TariffRepository defines tariff catalog data access methods
type TariffRepository interface {
	List(ctx context.Context) ([]*domain.Tariff, error)
	GetByID(ctx context.Context, id domain.TariffID) (*domain.Tariff, error)
	// ListForReferenceSelector orders the General tariff (id 0) first, then by name.
	ListForReferenceSelector(ctx context.Context) ([]*domain.Tariff, error)
	ListActive(ctx context.Context) ([]*domain.Tariff, error)
	Create(ctx context.Context, tariff *domain.Tariff) error
	Update(ctx context.Context, tariff *domain.Tariff) error
}

// ArticleRepository defines read-only access to the catalog's article table,
// which this service does not own and whose schema drifts between deployments.
type ArticleRepository interface {
	// Schema probes (once, then cached) which optional columns the article
	// table carries and which casing the brand table uses.
	Schema(ctx context.Context) (domain.ArticleSchema, error)
	// ListMatrix returns every article joined against the edited tariff's and
	// the reference tariff's override prices, optionally filtered by brand.
	ListMatrix(ctx context.Context, tariffID, refTariffID domain.TariffID, brandID *int64) ([]*domain.MatrixRow, error)
	// ResolveIdentities batch-resolves submitted ids and SKUs to true article
	// ids, for remapping bulk saves whose ids have drifted.
	ResolveIdentities(ctx context.Context, ids []int64, skus []string) (*domain.ArticleIdentity, error)
	// DatabaseName reports the connected database, for the debug view.
	DatabaseName(ctx context.Context) (string, error)
}

// BrandRepository defines read-only access to the brand lookup table
type BrandRepository interface {
	// List returns all brands sorted by name. It degrades to an empty list on
	// failure; the brand filter is cosmetic and must never block a page.
	List(ctx context.Context) ([]*domain.Brand, error)
}

// PriceBatch applies one bulk save's writes. Implementations run inside a
// single transaction with a savepoint per row, so one failing row is reported
// without aborting the rest of the batch.
type PriceBatch interface {
	Insert(ctx context.Context, articleID int64, cents int64) error
	Update(ctx context.Context, articleID int64, cents int64) error
	Delete(ctx context.Context, articleID int64) error
	Commit() error
	Rollback() error
}

// PriceOverrideRepository defines tariff price override data access methods
type PriceOverrideRepository interface {
	// GetCentsByArticle returns stored override prices in cents for the given
	// articles under one tariff, querying in bounded chunks.
	GetCentsByArticle(ctx context.Context, tariffID domain.TariffID, articleIDs []int64) (map[int64]int64, error)
	GetPrice(ctx context.Context, tariffID domain.TariffID, articleID int64) (*domain.PriceOverride, error)
	BeginBatch(ctx context.Context, tariffID domain.TariffID) (PriceBatch, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Tariff        TariffRepository
	Article       ArticleRepository
	Brand         BrandRepository
	PriceOverride PriceOverrideRepository
}
