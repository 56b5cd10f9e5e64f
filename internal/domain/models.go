package domain

import (
	"strconv"
	"time"
)

// PriceOverride is one line item of a tariff: "this article costs Price under
// this tariff instead of the reference price". At most one row exists per
// (tariff, article) pair; the reconciler treats that as the natural key even
// where no DB constraint enforces it.
type PriceOverride struct {
	TariffID  TariffID
	ArticleID int64
	Price     float64
	UpdatedAt time.Time
}

// Cents returns the price in integer cents. All price comparisons in the
// reconciler happen at cent precision to avoid floating-point false positives.
func (p *PriceOverride) Cents() int64 {
	return PriceToCents(p.Price)
}

// PriceToCents converts a decimal price to integer cents, rounding half away
// from zero the way the legacy CRM did.
func PriceToCents(price float64) int64 {
	if price < 0 {
		return -int64(-price*100 + 0.5)
	}
	return int64(price*100 + 0.5)
}

// Brand is a read-only lookup row from the catalog subsystem.
type Brand struct {
	ID   int64
	Name string
}

// ArticleSchema describes which optional columns the deployment's article
// table actually has, plus the resolved brand table name. The catalog schema
// is owned by another system and has drifted between deployments (column
// renames, casing changes), so every query against it is built from this
// descriptor instead of hard-coded.
type ArticleSchema struct {
	IDColumn        string // "IdArticulo" or "idarticulo"
	NameColumn      string // "" when absent
	BrandTextColumn string // inline brand text, "" when absent
	BrandIDColumn   string // FK to the brand table, "" when absent
	SKUColumn       string // "" when absent
	BrandTable      string // "marcas" or "Marcas", "" when unresolved
}

// HasSKU reports whether articles carry a SKU (national product code). SKU
// presence enables identity remapping during bulk saves.
func (s ArticleSchema) HasSKU() bool {
	return s.SKUColumn != ""
}

// ArticleIdentity holds the lookups built from one batch query over the
// article table: submitted SKU to true article id, and submitted raw id to
// true article id. Ids absent from ByID do not exist in the catalog.
type ArticleIdentity struct {
	BySKU map[string]int64
	ByID  map[int64]int64
}

// MatrixRow is one line of the editable price grid: an article with its
// own-tariff override price and the reference tariff's price, either of which
// may be absent.
type MatrixRow struct {
	ArticleID int64
	Name      string
	Brand     string
	SKU       string
	Price     *float64
	RefPrice  *float64
}

// PriceDisplay formats the own-tariff price for the grid, empty when there is
// no override.
func (r *MatrixRow) PriceDisplay() string {
	return formatPrice(r.Price)
}

// RefPriceDisplay formats the reference price for the grid.
func (r *MatrixRow) RefPriceDisplay() string {
	return formatPrice(r.RefPrice)
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// PriceMatrix is the full read-path result for one tariff's price page.
type PriceMatrix struct {
	Tariff    *Tariff
	Reference *Tariff
	Rows      []*MatrixRow
	Brands    []*Brand
}

// ActiveMatrix is the read-path result for the all-active-tariffs grid: the
// article axis (rows carry the General price) plus one price column per
// active tariff.
type ActiveMatrix struct {
	Tariffs []*Tariff
	Rows    []*MatrixRow
	Prices  map[TariffID]map[int64]float64
	Brands  []*Brand
}
