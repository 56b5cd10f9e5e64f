package service

import (
	"fmt"
	"strings"
)

// BulkSaveRequest is one tariff's bulk price submission: article id (as sent
// by the form, possibly stale) to raw price string, plus a parallel map of
// SKUs used to re-resolve article identity.
type BulkSaveRequest struct {
	Prices map[string]string
	SKUs   map[string]string
}

// RowFailure records one entry of a bulk save that could not be applied.
type RowFailure struct {
	ArticleID int64
	SKU       string
	Message   string
}

func (f RowFailure) String() string {
	if f.SKU != "" {
		return fmt.Sprintf("art %d (sku %s): %s", f.ArticleID, f.SKU, f.Message)
	}
	return fmt.Sprintf("art %d: %s", f.ArticleID, f.Message)
}

// BulkSaveResult reports what a bulk save did, row by row in aggregate.
type BulkSaveResult struct {
	Received  int
	Processed int
	Skipped   int
	Inserted  int
	Updated   int
	Unchanged int
	Remapped  int
	Failures  []RowFailure
}

// maxFailureExamples caps how many row failures the redirect message lists.
const maxFailureExamples = 3

// OutcomeMessage renders the result as the redirect flash message shown to
// the operator. The first return value is the query parameter to use: "error"
// for total or partial failures, "msg" for success.
func (r *BulkSaveResult) OutcomeMessage() (param, message string) {
	if r.Processed == 0 {
		return "error", "No se recibió ningún precio válido. Revisa el formulario o añade ?debug=1 para diagnosticar."
	}

	if len(r.Failures) > 0 {
		examples := make([]string, 0, maxFailureExamples)
		for i, f := range r.Failures {
			if i == maxFailureExamples {
				break
			}
			examples = append(examples, f.String())
		}
		return "error", fmt.Sprintf(
			"Guardado parcial: %d insertados, %d actualizados, %d sin cambios, %d fallos. Ejemplos: %s",
			r.Inserted, r.Updated, r.Unchanged, len(r.Failures), strings.Join(examples, "; "))
	}

	message = fmt.Sprintf("Precios guardados: %d insertados, %d actualizados, %d sin cambios, %d omitidos",
		r.Inserted, r.Updated, r.Unchanged, r.Skipped)
	if r.Remapped > 0 {
		message += fmt.Sprintf(", %d reasignados por SKU", r.Remapped)
	}
	return "msg", message
}
