package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	"github.com/farmashop/pricingapi/pkg/errors"
)

// TariffInput carries the tariff form fields.
type TariffInput struct {
	Name      string
	Active    bool
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string
}

type tariffService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewTariffService creates a new tariff service
func NewTariffService(repos *repository.Repositories, logger *zap.Logger) *tariffService {
	return &tariffService{
		repos:  repos,
		logger: logger,
	}
}

func (s *tariffService) Create(ctx context.Context, input TariffInput) (*domain.Tariff, error) {
	tariff, err := buildTariff(input)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Tariff.Create(ctx, tariff); err != nil {
		return nil, err
	}

	s.logger.Info("Tariff created", zap.Int64("tariff_id", int64(tariff.ID)), zap.String("name", tariff.Name))
	return tariff, nil
}

func (s *tariffService) Update(ctx context.Context, id domain.TariffID, input TariffInput) (*domain.Tariff, error) {
	existing, err := s.repos.Tariff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tariff, err := buildTariff(input)
	if err != nil {
		return nil, err
	}
	tariff.ID = existing.ID
	tariff.CreatedAt = existing.CreatedAt

	if err := s.repos.Tariff.Update(ctx, tariff); err != nil {
		return nil, err
	}

	s.logger.Info("Tariff updated", zap.Int64("tariff_id", int64(tariff.ID)))
	return tariff, nil
}

// buildTariff validates the form input and applies the closing rule: a tariff
// with a real end date is forced inactive no matter what the form said.
func buildTariff(input TariffInput) (*domain.Tariff, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &errors.ErrValidation{
			Message: "el nombre de la tarifa es obligatorio",
			Fields:  map[string]string{"nombre": "required"},
		}
	}

	tariff := &domain.Tariff{
		Name:      name,
		Active:    input.Active,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		tariff.Notes = &notes
	}

	if domain.HasRealDate(tariff.EndDate) {
		tariff.Active = false
	}

	return tariff, nil
}
