package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	apperrors "github.com/farmashop/pricingapi/pkg/errors"
)

func float(v float64) *float64 { return &v }

func TestBuildPriceMatrixSubstitutesSyntheticGeneral(t *testing.T) {
	articles := newFakeArticleRepo()
	articles.matrixRows = []*domain.MatrixRow{
		{ArticleID: 1, Name: "Crema", Price: float(12.5), RefPrice: float(10)},
	}
	tariffs := newFakeTariffRepo(&domain.Tariff{ID: 3, Name: "Verano", Active: true})
	s := NewMatrixService(newRepos(articles, newFakePriceRepo(), tariffs), zap.NewNop())

	// No physical row with id 0 exists; the reference must become the
	// synthetic General placeholder, not an error.
	matrix, err := s.BuildPriceMatrix(context.Background(), 3, domain.GeneralTariffID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matrix.Tariff.ID != 3 {
		t.Errorf("expected tariff 3, got %d", matrix.Tariff.ID)
	}
	if !matrix.Reference.ID.IsGeneral() || matrix.Reference.Name != "General" {
		t.Errorf("expected synthetic General reference, got %+v", matrix.Reference)
	}
	if len(matrix.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(matrix.Rows))
	}
}

func TestBuildPriceMatrixUnknownTariffIsNotFound(t *testing.T) {
	s := NewMatrixService(newRepos(newFakeArticleRepo(), newFakePriceRepo(), newFakeTariffRepo()), zap.NewNop())

	_, err := s.BuildPriceMatrix(context.Background(), 99, domain.GeneralTariffID, nil)
	if _, ok := err.(*apperrors.ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBuildPriceMatrixMissingReferenceFallsBackToGeneral(t *testing.T) {
	tariffs := newFakeTariffRepo(&domain.Tariff{ID: 3, Name: "Verano", Active: true})
	s := NewMatrixService(newRepos(newFakeArticleRepo(), newFakePriceRepo(), tariffs), zap.NewNop())

	matrix, err := s.BuildPriceMatrix(context.Background(), 3, 77, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !matrix.Reference.ID.IsGeneral() {
		t.Errorf("missing reference should degrade to General, got %+v", matrix.Reference)
	}
}

func TestBuildPriceMatrixCoreQueryFailureIsFatal(t *testing.T) {
	articles := newFakeArticleRepo()
	articles.matrixErr = errors.New("relation does not exist")
	tariffs := newFakeTariffRepo(&domain.Tariff{ID: 3, Name: "Verano"})
	s := NewMatrixService(newRepos(articles, newFakePriceRepo(), tariffs), zap.NewNop())

	if _, err := s.BuildPriceMatrix(context.Background(), 3, domain.GeneralTariffID, nil); err == nil {
		t.Fatal("article query failure must propagate")
	}
}

func TestBuildPriceMatrixBrandFailureDegrades(t *testing.T) {
	articles := newFakeArticleRepo()
	tariffs := newFakeTariffRepo(&domain.Tariff{ID: 3, Name: "Verano"})
	repos := newRepos(articles, newFakePriceRepo(), tariffs)
	repos.Brand = &fakeBrandRepo{err: errors.New("marcas is gone")}
	s := NewMatrixService(repos, zap.NewNop())

	matrix, err := s.BuildPriceMatrix(context.Background(), 3, domain.GeneralTariffID, nil)
	if err != nil {
		t.Fatalf("brand failure must not break the page: %v", err)
	}
	if len(matrix.Brands) != 0 {
		t.Errorf("expected empty brand list, got %d", len(matrix.Brands))
	}
}

func TestBuildActiveMatrixCollectsColumnsPerTariff(t *testing.T) {
	articles := newFakeArticleRepo()
	articles.matrixRows = []*domain.MatrixRow{
		{ArticleID: 1, Name: "Crema", Price: float(5)},
		{ArticleID: 2, Name: "Gel"},
	}
	prices := newFakePriceRepo()
	prices.set(3, 1, 450)
	tariffs := newFakeTariffRepo(
		&domain.Tariff{ID: 3, Name: "Verano", Active: true},
		&domain.Tariff{ID: 4, Name: "Cerrada", Active: false},
	)
	s := NewMatrixService(newRepos(articles, prices, tariffs), zap.NewNop())

	matrix, err := s.BuildActiveMatrix(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matrix.Tariffs) != 1 || matrix.Tariffs[0].ID != 3 {
		t.Fatalf("only active tariffs belong in the matrix, got %+v", matrix.Tariffs)
	}
	if got := matrix.Prices[3][1]; got != 4.5 {
		t.Errorf("expected 4.5 for article 1 under tariff 3, got %v", got)
	}
	if _, ok := matrix.Prices[3][2]; ok {
		t.Error("article 2 has no override and should not appear in the column")
	}
}
