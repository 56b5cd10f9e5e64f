package domain

import (
	"time"
)

// TariffID identifies a pricing tariff. ID 0 is reserved for the implicit
// "General" base tariff, which exists conceptually even when no physical row
// with id 0 is present.
type TariffID int64

// GeneralTariffID is the base tariff every other tariff falls back to.
const GeneralTariffID TariffID = 0

// IsGeneral reports whether this is the base tariff.
func (id TariffID) IsGeneral() bool {
	return id == GeneralTariffID
}

// Tariff represents a named pricing plan for clients
type Tariff struct {
	ID        TariffID
	Name      string
	Active    bool
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeneralTariff returns the synthetic placeholder used when no physical row
// exists for id 0.
func GeneralTariff() *Tariff {
	return &Tariff{ID: GeneralTariffID, Name: "General", Active: true}
}

// IsCurrentlyActive reports whether the tariff is in force: the active flag is
// set and no real end date is stored. Legacy rows imported from the old CRM can
// carry a zero-valued end date instead of NULL; both count as "no end date".
func (t *Tariff) IsCurrentlyActive() bool {
	return t.Active && !HasRealDate(t.EndDate)
}

// HasRealDate reports whether d holds an actual calendar date, treating both
// nil and zero-valued timestamps as absent.
func HasRealDate(d *time.Time) bool {
	return d != nil && !d.IsZero()
}
