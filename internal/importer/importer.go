package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// ProgressFunc is called after each processed row during import.
type ProgressFunc func(done, total int)

// Option configures an Importer.
type Option func(*Importer)

// WithProgress attaches a per-row progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(im *Importer) { im.progress = fn }
}

// WithDefaultStatus overrides the status assigned to rows that carry none.
func WithDefaultStatus(status string) Option {
	return func(im *Importer) { im.defaultStatus = status }
}

// Importer drives the end-to-end import pipeline: file validation, header
// mapping, resolution preprocessing, and the per-row transactional build and
// save.
//
// Two failure classes are kept strictly apart. Row-level data defects (bad
// date, bad amount, unmatched assignee) are absorbed into degraded-but-saved
// entries by the Builder. Structural failures and per-row save rejections
// accumulate as global errors, and any global error rolls the whole batch
// back: there is no partial-success outcome.
type Importer struct {
	store         service.EntryStore
	vocab         service.VocabularyStore
	users         service.UserDirectory
	defaultStatus string
	progress      ProgressFunc
}

// New creates an importer wired to its collaborators.
func New(store service.EntryStore, vocab service.VocabularyStore, users service.UserDirectory, opts ...Option) *Importer {
	im := &Importer{
		store: store,
		vocab: vocab,
		users: users,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Batch is one import invocation: the raw file text plus its operator-supplied
// context. It lives for a single Import call.
type Batch struct {
	Content     string
	Filename    string
	Project     string
	Author      string
	Resolutions model.Resolutions
}

// Preview takes a vocabulary snapshot and runs the conflict scan without any
// side effects.
func (im *Importer) Preview(ctx context.Context, content string) (*PreviewResult, error) {
	vocab, err := im.vocabularySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return NewPreviewer(vocab).Preview(content), nil
}

func (im *Importer) vocabularySnapshot(ctx context.Context) (Vocabulary, error) {
	types, err := im.vocab.PossibleValues(ctx, service.FieldTransactionType)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to load transaction types: %w", err)
	}
	categories, err := im.vocab.PossibleValues(ctx, service.FieldCategory)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return Vocabulary{Types: types, Categories: categories}, nil
}

// Import runs the full pipeline on one batch. The returned result carries the
// imported count, the global error list, and any newly minted vocabulary
// values. A non-empty error list means nothing was persisted.
func (im *Importer) Import(ctx context.Context, batch Batch) *model.ImportResult {
	result := &model.ImportResult{}

	if !im.validateFile(batch, result) {
		return result
	}

	columns, records, err := readCSV(batch.Content)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	headers := ResolveHeaders(columns)
	if missing := headers.MissingRequired(); len(missing) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("required columns are missing: %s", strings.Join(missing, ", ")))
		return result
	}

	applier := NewApplier(im.vocab, batch.Resolutions)
	if err := applier.Preprocess(ctx); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.NewlyCreatedCategories = applier.NewCategories()
	result.NewlyCreatedTypes = applier.NewTypes()

	builder := NewBuilder(BuilderConfig{
		Headers:       headers,
		Applier:       applier,
		Users:         im.users,
		Project:       batch.Project,
		Author:        batch.Author,
		SourceFile:    batch.Filename,
		DefaultStatus: im.defaultStatus,
	})

	im.importRows(ctx, builder, columns, records, result)

	slog.Info("import finished",
		"file", batch.Filename,
		"imported", result.ImportedCount,
		"errors", len(result.Errors))

	return result
}

// validateFile checks the batch before any parsing: non-empty content, valid
// UTF-8, and a .csv extension.
func (im *Importer) validateFile(batch Batch, result *model.ImportResult) bool {
	if strings.TrimSpace(batch.Content) == "" {
		result.Errors = append(result.Errors, "no file content provided")
		return false
	}

	if !utf8.ValidString(batch.Content) {
		result.Errors = append(result.Errors, "file is not valid UTF-8")
		return false
	}

	if !strings.EqualFold(filepath.Ext(batch.Filename), ".csv") {
		result.Errors = append(result.Errors,
			fmt.Sprintf("invalid file format %q, expected .csv", filepath.Ext(batch.Filename)))
		return false
	}

	return true
}

// importRows processes every record inside one atomic transaction. Save
// failures are appended to the global error list with their physical row
// number but do not stop subsequent rows; any accumulated error rolls the
// whole batch back. A record whose fingerprint matches an earlier record in
// the same batch is skipped, so re-pasted rows do not double-count.
func (im *Importer) importRows(ctx context.Context, builder *Builder, columns []string, records [][]string, result *model.ImportResult) {
	tx, err := im.store.BeginTx(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to begin transaction: %v", err))
		return
	}

	seen := make(map[string]bool, len(records))
	for i, record := range records {
		// Row numbers count records, offset past the header. A quoted field
		// containing a newline makes later numbers diverge from physical
		// file lines.
		rowNumber := i + 2
		row := rowValues(columns, record)

		entry := builder.Build(ctx, row, rowNumber)
		if entry != nil {
			entry.Hash = entry.GenerateHash()
			if seen[entry.Hash] {
				slog.Warn("skipping duplicate row", "row", rowNumber, "subject", entry.Subject)
			} else if err := tx.SaveEntry(ctx, entry); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNumber, err))
			} else {
				seen[entry.Hash] = true
				result.ImportedCount++
			}
		}

		if im.progress != nil {
			im.progress(i+1, len(records))
		}
	}

	if len(result.Errors) > 0 {
		if err := tx.Rollback(); err != nil {
			slog.Error("rollback failed", "error", err)
		}
		result.ImportedCount = 0
		return
	}

	if err := tx.Commit(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to commit batch: %v", err))
		result.ImportedCount = 0
	}
}
