package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fotonlabs/cashflow/internal/common"
	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// resolvableKeys are the canonical columns whose values can be resolved by an
// operator, in the order preprocessing visits them.
var resolvableKeys = []string{service.FieldCategory, service.FieldTransactionType}

// Applier turns an operator-supplied resolution map into vocabulary mutations
// and per-row value substitutions. It works in two phases: Preprocess mints
// every "create new" value into the vocabulary up front, so that by the time
// rows are built each minted value is already valid; Resolve then substitutes
// values row by row without further side effects.
type Applier struct {
	vocab         service.VocabularyStore
	resolutions   model.Resolutions
	newCategories []string
	newTypes      []string
}

// NewApplier creates an applier for one import batch.
func NewApplier(vocab service.VocabularyStore, resolutions model.Resolutions) *Applier {
	return &Applier{vocab: vocab, resolutions: resolutions}
}

// Preprocess appends every distinct "create new" value to its vocabulary,
// skipping values an existing entry already matches case-insensitively. Each
// value is minted exactly once per batch regardless of how many rows
// reference it. A persist failure aborts the whole batch, so it is returned
// rather than recorded per row.
func (a *Applier) Preprocess(ctx context.Context) error {
	for _, key := range resolvableKeys {
		values := a.createNewValues(key)
		if len(values) == 0 {
			continue
		}

		current, err := a.vocab.PossibleValues(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: reading %s values: %v", common.ErrVocabularyWrite, key, err)
		}

		for _, value := range values {
			if containsFold(current, value) {
				slog.Debug("vocabulary value already present, skipping",
					"field", key, "value", value)
				continue
			}

			current = append(current, value)
			err := common.WithRetry(ctx, func() error {
				return a.vocab.SetPossibleValues(ctx, key, current)
			}, common.RetryOptions{})
			if err != nil {
				return fmt.Errorf("%w: adding %q to %s: %v", common.ErrVocabularyWrite, value, key, err)
			}

			a.recordNewValue(key, value)
			slog.Info("created new vocabulary value", "field", key, "value", value)
		}
	}

	return nil
}

// createNewValues collects the distinct values marked "create new" under a
// key, sorted so vocabulary mutation order is deterministic. Category cells
// can hold several comma-separated values and conflicts are keyed by the full
// cell text, so category values are split on commas before minting; a stored
// category must never contain the separator the storage layer joins on.
func (a *Applier) createNewValues(key string) []string {
	var values []string
	for original, resolution := range a.resolutions[key] {
		if resolution != model.ResolutionCreateNew {
			continue
		}
		parts := []string{original}
		if key == service.FieldCategory {
			parts = strings.Split(original, ",")
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			values = append(values, part)
		}
	}
	sort.Strings(values)
	return values
}

func (a *Applier) recordNewValue(key, value string) {
	switch key {
	case service.FieldCategory:
		a.newCategories = append(a.newCategories, value)
	case service.FieldTransactionType:
		a.newTypes = append(a.newTypes, value)
	}
}

// Resolve returns the value a row should actually carry for a column: the
// mapped replacement when the operator chose one, otherwise the original
// value unchanged. "Create new" resolutions also return the original, since
// Preprocess already made it valid.
func (a *Applier) Resolve(key, originalValue string) string {
	resolution, ok := a.resolutions.Lookup(key, originalValue)
	if !ok || resolution == model.ResolutionCreateNew {
		return originalValue
	}
	return resolution
}

// NewCategories returns the category values minted by Preprocess.
func (a *Applier) NewCategories() []string {
	return a.newCategories
}

// NewTypes returns the transaction type values minted by Preprocess.
func (a *Applier) NewTypes() []string {
	return a.newTypes
}
