package service

import (
	"context"
	"strconv"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	apperrors "github.com/farmashop/pricingapi/pkg/errors"
)

type fakeArticle struct {
	id  int64
	sku string
}

type fakeArticleRepo struct {
	schema     domain.ArticleSchema
	articles   []fakeArticle
	matrixRows []*domain.MatrixRow
	matrixErr  error
	resolveErr error
	dbName     string
}

func newFakeArticleRepo(articles ...fakeArticle) *fakeArticleRepo {
	return &fakeArticleRepo{
		schema: domain.ArticleSchema{
			IDColumn:        "idarticulo",
			NameColumn:      "nombre",
			BrandTextColumn: "marca",
			SKUColumn:       "sku",
		},
		articles: articles,
		dbName:   "crmfarma_test",
	}
}

func (f *fakeArticleRepo) Schema(ctx context.Context) (domain.ArticleSchema, error) {
	return f.schema, nil
}

func (f *fakeArticleRepo) DatabaseName(ctx context.Context) (string, error) {
	return f.dbName, nil
}

func (f *fakeArticleRepo) ListMatrix(ctx context.Context, tariffID, refTariffID domain.TariffID, brandID *int64) ([]*domain.MatrixRow, error) {
	if f.matrixErr != nil {
		return nil, f.matrixErr
	}
	return f.matrixRows, nil
}

func (f *fakeArticleRepo) ResolveIdentities(ctx context.Context, ids []int64, skus []string) (*domain.ArticleIdentity, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if !f.schema.HasSKU() {
		return nil, nil
	}

	wantID := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wantID[id] = struct{}{}
	}
	wantSKU := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		wantSKU[sku] = struct{}{}
	}

	identity := &domain.ArticleIdentity{
		BySKU: map[string]int64{},
		ByID:  map[int64]int64{},
	}
	for _, a := range f.articles {
		_, idMatch := wantID[a.id]
		_, skuMatch := wantSKU[a.sku]
		if !idMatch && !skuMatch {
			continue
		}
		identity.ByID[a.id] = a.id
		if a.sku != "" {
			identity.BySKU[a.sku] = a.id
		}
	}
	return identity, nil
}

type writeOp struct {
	kind      string // "insert", "update", "delete"
	articleID int64
	cents     int64
}

type fakePriceRepo struct {
	stored   map[domain.TariffID]map[int64]int64 // cents
	writeErr map[int64]error                     // per-article write failures
	beginErr error
	batches  []*fakeBatch
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{
		stored:   map[domain.TariffID]map[int64]int64{},
		writeErr: map[int64]error{},
	}
}

func (f *fakePriceRepo) set(tariffID domain.TariffID, articleID, cents int64) {
	if f.stored[tariffID] == nil {
		f.stored[tariffID] = map[int64]int64{}
	}
	f.stored[tariffID][articleID] = cents
}

func (f *fakePriceRepo) GetCentsByArticle(ctx context.Context, tariffID domain.TariffID, articleIDs []int64) (map[int64]int64, error) {
	result := map[int64]int64{}
	for _, id := range articleIDs {
		if cents, ok := f.stored[tariffID][id]; ok {
			result[id] = cents
		}
	}
	return result, nil
}

func (f *fakePriceRepo) GetPrice(ctx context.Context, tariffID domain.TariffID, articleID int64) (*domain.PriceOverride, error) {
	cents, ok := f.stored[tariffID][articleID]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "price_override", ID: strconv.FormatInt(articleID, 10)}
	}
	return &domain.PriceOverride{
		TariffID:  tariffID,
		ArticleID: articleID,
		Price:     float64(cents) / 100,
	}, nil
}

func (f *fakePriceRepo) BeginBatch(ctx context.Context, tariffID domain.TariffID) (repository.PriceBatch, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	batch := &fakeBatch{repo: f, tariffID: tariffID}
	f.batches = append(f.batches, batch)
	return batch, nil
}

// fakeBatch stages writes and merges them on Commit, mirroring the
// savepoint-per-row behavior: a failing row stages nothing.
type fakeBatch struct {
	repo       *fakePriceRepo
	tariffID   domain.TariffID
	ops        []writeOp
	committed  bool
	rolledBack bool
}

func (b *fakeBatch) Insert(ctx context.Context, articleID int64, cents int64) error {
	if err := b.repo.writeErr[articleID]; err != nil {
		return err
	}
	b.ops = append(b.ops, writeOp{kind: "insert", articleID: articleID, cents: cents})
	return nil
}

func (b *fakeBatch) Update(ctx context.Context, articleID int64, cents int64) error {
	if err := b.repo.writeErr[articleID]; err != nil {
		return err
	}
	b.ops = append(b.ops, writeOp{kind: "update", articleID: articleID, cents: cents})
	return nil
}

func (b *fakeBatch) Delete(ctx context.Context, articleID int64) error {
	if err := b.repo.writeErr[articleID]; err != nil {
		return err
	}
	b.ops = append(b.ops, writeOp{kind: "delete", articleID: articleID})
	return nil
}

func (b *fakeBatch) Commit() error {
	b.committed = true
	for _, op := range b.ops {
		switch op.kind {
		case "insert", "update":
			b.repo.set(b.tariffID, op.articleID, op.cents)
		case "delete":
			delete(b.repo.stored[b.tariffID], op.articleID)
		}
	}
	return nil
}

func (b *fakeBatch) Rollback() error {
	b.rolledBack = true
	return nil
}

type fakeTariffRepo struct {
	tariffs map[domain.TariffID]*domain.Tariff
	nextID  domain.TariffID
}

func newFakeTariffRepo(tariffs ...*domain.Tariff) *fakeTariffRepo {
	repo := &fakeTariffRepo{
		tariffs: map[domain.TariffID]*domain.Tariff{},
		nextID:  1,
	}
	for _, t := range tariffs {
		repo.tariffs[t.ID] = t
		if t.ID >= repo.nextID {
			repo.nextID = t.ID + 1
		}
	}
	return repo
}

func (f *fakeTariffRepo) List(ctx context.Context) ([]*domain.Tariff, error) {
	var result []*domain.Tariff
	for _, t := range f.tariffs {
		result = append(result, t)
	}
	return result, nil
}

func (f *fakeTariffRepo) GetByID(ctx context.Context, id domain.TariffID) (*domain.Tariff, error) {
	t, ok := f.tariffs[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "tariff", ID: strconv.FormatInt(int64(id), 10)}
	}
	return t, nil
}

func (f *fakeTariffRepo) ListForReferenceSelector(ctx context.Context) ([]*domain.Tariff, error) {
	return f.List(ctx)
}

func (f *fakeTariffRepo) ListActive(ctx context.Context) ([]*domain.Tariff, error) {
	var result []*domain.Tariff
	for _, t := range f.tariffs {
		if t.IsCurrentlyActive() {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeTariffRepo) Create(ctx context.Context, tariff *domain.Tariff) error {
	tariff.ID = f.nextID
	f.nextID++
	f.tariffs[tariff.ID] = tariff
	return nil
}

func (f *fakeTariffRepo) Update(ctx context.Context, tariff *domain.Tariff) error {
	if _, ok := f.tariffs[tariff.ID]; !ok {
		return &apperrors.ErrNotFound{Resource: "tariff", ID: strconv.FormatInt(int64(tariff.ID), 10)}
	}
	f.tariffs[tariff.ID] = tariff
	return nil
}

type fakeBrandRepo struct {
	brands []*domain.Brand
	err    error
}

func (f *fakeBrandRepo) List(ctx context.Context) ([]*domain.Brand, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.brands, nil
}

func newRepos(articles *fakeArticleRepo, prices *fakePriceRepo, tariffs *fakeTariffRepo) *repository.Repositories {
	return &repository.Repositories{
		Tariff:        tariffs,
		Article:       articles,
		Brand:         &fakeBrandRepo{},
		PriceOverride: prices,
	}
}
