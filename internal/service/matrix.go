package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	"github.com/farmashop/pricingapi/pkg/errors"
)

// matrixService builds the editable price grid for one tariff.
type matrixService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewMatrixService creates a new price matrix service
func NewMatrixService(repos *repository.Repositories, logger *zap.Logger) *matrixService {
	return &matrixService{
		repos:  repos,
		logger: logger,
	}
}

// BuildPriceMatrix returns the tariff being edited, the reference tariff,
// every article with its own and reference prices, and the brand list for the
// filter dropdown. Failures of cosmetic lookups (brands, reference tariff)
// degrade to defaults; only the core article query is fatal.
func (s *matrixService) BuildPriceMatrix(ctx context.Context, tariffID, refTariffID domain.TariffID, brandID *int64) (*domain.PriceMatrix, error) {
	tariff, err := s.getTariffOrGeneral(ctx, tariffID)
	if err != nil {
		return nil, err
	}

	reference, err := s.getTariffOrGeneral(ctx, refTariffID)
	if err != nil {
		// The comparison column is optional; fall back to the base tariff.
		s.logger.Warn("Reference tariff unavailable, falling back to General",
			zap.Int64("ref_tariff_id", int64(refTariffID)), zap.Error(err))
		reference = domain.GeneralTariff()
	}

	rows, err := s.repos.Article.ListMatrix(ctx, tariff.ID, reference.ID, brandID)
	if err != nil {
		return nil, err
	}

	brands, err := s.repos.Brand.List(ctx)
	if err != nil {
		s.logger.Warn("Brand list unavailable", zap.Error(err))
		brands = []*domain.Brand{}
	}

	return &domain.PriceMatrix{
		Tariff:    tariff,
		Reference: reference,
		Rows:      rows,
		Brands:    brands,
	}, nil
}

// BuildActiveMatrix returns the grid of every article against every
// currently active tariff, General prices on the article rows.
func (s *matrixService) BuildActiveMatrix(ctx context.Context, brandID *int64) (*domain.ActiveMatrix, error) {
	tariffs, err := s.repos.Tariff.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repos.Article.ListMatrix(ctx, domain.GeneralTariffID, domain.GeneralTariffID, brandID)
	if err != nil {
		return nil, err
	}

	articleIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		articleIDs = append(articleIDs, row.ArticleID)
	}

	prices := make(map[domain.TariffID]map[int64]float64, len(tariffs))
	for _, tariff := range tariffs {
		cents, err := s.repos.PriceOverride.GetCentsByArticle(ctx, tariff.ID, articleIDs)
		if err != nil {
			return nil, err
		}
		column := make(map[int64]float64, len(cents))
		for articleID, value := range cents {
			column[articleID] = float64(value) / 100
		}
		prices[tariff.ID] = column
	}

	brands, err := s.repos.Brand.List(ctx)
	if err != nil {
		s.logger.Warn("Brand list unavailable", zap.Error(err))
		brands = []*domain.Brand{}
	}

	return &domain.ActiveMatrix{
		Tariffs: tariffs,
		Rows:    rows,
		Prices:  prices,
		Brands:  brands,
	}, nil
}

// getTariffOrGeneral resolves a tariff id, substituting the synthetic General
// placeholder when id 0 has no physical row. A missing non-zero id is a real
// not-found.
func (s *matrixService) getTariffOrGeneral(ctx context.Context, id domain.TariffID) (*domain.Tariff, error) {
	tariff, err := s.repos.Tariff.GetByID(ctx, id)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok && id.IsGeneral() {
			return domain.GeneralTariff(), nil
		}
		return nil, err
	}
	return tariff, nil
}
