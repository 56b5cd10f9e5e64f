package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
)

// reconcilerService converges stored price overrides for one tariff to a bulk
// submission: minimal inserts/updates/deletes, SKU-first identity resolution,
// per-row failure capture.
type reconcilerService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewReconcilerService creates a new bulk price reconciler
func NewReconcilerService(repos *repository.Repositories, logger *zap.Logger) *reconcilerService {
	return &reconcilerService{
		repos:  repos,
		logger: logger,
	}
}

// bulkEntry is one normalized submission row.
type bulkEntry struct {
	articleID   int64 // as submitted
	effectiveID int64 // after SKU/id resolution
	sku         string
	empty       bool  // empty price cell: candidate for deletion
	cents       int64 // submitted price in cents, valid when !empty
	exists      bool  // effective id exists in the article table
	remapped    bool  // SKU resolution changed the target id
}

// Reconcile applies one bulk submission to the given tariff and reports the
// outcome. Errors from individual row writes never abort the batch; only
// batch-level failures (lookup queries, transaction begin/commit) return a
// non-nil error.
func (s *reconcilerService) Reconcile(ctx context.Context, tariffID domain.TariffID, req BulkSaveRequest) (*BulkSaveResult, error) {
	result := &BulkSaveResult{Received: len(req.Prices)}

	entries := s.normalize(req, result)
	result.Processed = len(entries)
	if len(entries) == 0 {
		return result, nil
	}

	if err := s.resolveIdentities(ctx, entries, result); err != nil {
		return nil, err
	}

	// Deterministic write order; form maps carry none.
	sort.Slice(entries, func(i, j int) bool { return entries[i].effectiveID < entries[j].effectiveID })

	stored, err := s.loadStored(ctx, tariffID, entries)
	if err != nil {
		return nil, err
	}

	batch, err := s.repos.PriceOverride.BeginBatch(ctx, tariffID)
	if err != nil {
		return nil, err
	}

	s.applyEntries(ctx, batch, tariffID, entries, stored, result)

	if err := batch.Commit(); err != nil {
		batch.Rollback()
		s.logger.Error("Failed to commit bulk price save", zap.Int64("tariff_id", int64(tariffID)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Bulk price save applied",
		zap.Int64("tariff_id", int64(tariffID)),
		zap.Int("received", result.Received),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
		zap.Int("remapped", result.Remapped),
		zap.Int("failures", len(result.Failures)),
	)

	return result, nil
}

// normalize parses the raw submission. Unparseable ids or prices count as
// skipped, never as errors; an empty price cell marks the entry for deletion
// instead of parsing as zero.
func (s *reconcilerService) normalize(req BulkSaveRequest, result *BulkSaveResult) []*bulkEntry {
	entries := make([]*bulkEntry, 0, len(req.Prices))

	for rawID, rawPrice := range req.Prices {
		articleID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || articleID <= 0 {
			result.Skipped++
			continue
		}

		entry := &bulkEntry{
			articleID:   articleID,
			effectiveID: articleID,
			sku:         strings.TrimSpace(req.SKUs[rawID]),
			exists:      true,
		}

		price := strings.TrimSpace(rawPrice)
		if price == "" {
			entry.empty = true
			entries = append(entries, entry)
			continue
		}

		// The grid accepts comma as decimal separator.
		value, err := strconv.ParseFloat(strings.ReplaceAll(price, ",", "."), 64)
		if err != nil || math.IsInf(value, 0) || math.IsNaN(value) || value < 0 {
			result.Skipped++
			continue
		}

		entry.cents = domain.PriceToCents(value)
		entries = append(entries, entry)
	}

	return entries
}

// resolveIdentities re-targets entries by SKU where the catalog supports it.
// Article ids drift across re-imports and renumbering while the SKU (national
// product code) stays stable, so a SKU match beats the submitted id.
func (s *reconcilerService) resolveIdentities(ctx context.Context, entries []*bulkEntry, result *BulkSaveResult) error {
	ids := make([]int64, 0, len(entries))
	skus := make([]string, 0, len(entries))
	seenIDs := make(map[int64]struct{})
	seenSKUs := make(map[string]struct{})
	for _, entry := range entries {
		if _, ok := seenIDs[entry.articleID]; !ok {
			seenIDs[entry.articleID] = struct{}{}
			ids = append(ids, entry.articleID)
		}
		if entry.sku != "" {
			if _, ok := seenSKUs[entry.sku]; !ok {
				seenSKUs[entry.sku] = struct{}{}
				skus = append(skus, entry.sku)
			}
		}
	}

	identity, err := s.repos.Article.ResolveIdentities(ctx, ids, skus)
	if err != nil {
		return err
	}
	if identity == nil {
		// No SKU column on this deployment: nothing to remap, existence is
		// checked row by row at write time.
		return nil
	}

	for _, entry := range entries {
		if resolved, ok := identity.BySKU[entry.sku]; entry.sku != "" && ok {
			if resolved != entry.articleID {
				entry.remapped = true
				result.Remapped++
			}
			entry.effectiveID = resolved
			entry.exists = true
			continue
		}
		if resolved, ok := identity.ByID[entry.articleID]; ok {
			entry.effectiveID = resolved
			entry.exists = true
			continue
		}
		// Entries whose effective id is unknown fail per-row later, so the
		// operator can diagnose mismatched SKUs instead of losing rows.
		entry.exists = false
	}

	return nil
}

func (s *reconcilerService) loadStored(ctx context.Context, tariffID domain.TariffID, entries []*bulkEntry) (map[int64]int64, error) {
	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]struct{})
	for _, entry := range entries {
		if !entry.exists {
			continue
		}
		if _, ok := seen[entry.effectiveID]; ok {
			continue
		}
		seen[entry.effectiveID] = struct{}{}
		ids = append(ids, entry.effectiveID)
	}
	if len(ids) == 0 {
		return map[int64]int64{}, nil
	}

	return s.repos.PriceOverride.GetCentsByArticle(ctx, tariffID, ids)
}

func (s *reconcilerService) applyEntries(
	ctx context.Context,
	batch repository.PriceBatch,
	tariffID domain.TariffID,
	entries []*bulkEntry,
	stored map[int64]int64,
	result *BulkSaveResult,
) {
	fail := func(entry *bulkEntry, message string) {
		result.Failures = append(result.Failures, RowFailure{
			ArticleID: entry.articleID,
			SKU:       entry.sku,
			Message:   message,
		})
	}

	// stored is kept current as writes are applied: two entries resolving to
	// the same effective id (stale id + true id sharing a SKU) must not both
	// insert.
	for _, entry := range entries {
		if !entry.exists {
			fail(entry, "articulo no encontrado")
			continue
		}

		storedCents, hasStored := stored[entry.effectiveID]

		if entry.empty {
			switch {
			case tariffID.IsGeneral():
				// The General tariff is the price floor; an empty cell never
				// deletes its base price.
				result.Skipped++
			case !hasStored:
				result.Unchanged++
			default:
				if err := batch.Delete(ctx, entry.effectiveID); err != nil {
					fail(entry, err.Error())
					continue
				}
				delete(stored, entry.effectiveID)
				result.Updated++
			}
			continue
		}

		switch {
		case hasStored && storedCents == entry.cents:
			result.Unchanged++
		case !hasStored:
			if err := batch.Insert(ctx, entry.effectiveID, entry.cents); err != nil {
				fail(entry, err.Error())
				continue
			}
			stored[entry.effectiveID] = entry.cents
			result.Inserted++
		default:
			if err := batch.Update(ctx, entry.effectiveID, entry.cents); err != nil {
				fail(entry, err.Error())
				continue
			}
			stored[entry.effectiveID] = entry.cents
			result.Updated++
		}
	}
}
