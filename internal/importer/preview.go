package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fotonlabs/cashflow/internal/model"
)

// Vocabulary is a read-only snapshot of the controlled value lists taken at
// preview time. Resolution options reported in conflicts reflect this
// snapshot, not whatever the store holds later.
type Vocabulary struct {
	Types      []string
	Categories []string
}

// ContainsType reports whether value matches an allowed transaction type,
// case-insensitively.
func (v Vocabulary) ContainsType(value string) bool {
	return containsFold(v.Types, value)
}

// ContainsCategory reports whether value matches an allowed category,
// case-insensitively.
func (v Vocabulary) ContainsCategory(value string) bool {
	return containsFold(v.Categories, value)
}

func containsFold(values []string, value string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}

// PreviewResult carries everything the preview stage produced: the resolved
// header map and the ordered conflict list.
type PreviewResult struct {
	HeaderMap HeaderMap
	Conflicts []model.Conflict
}

// HasConflicts reports whether any conflict was detected. An empty preview
// lets the caller proceed straight to import without operator interaction.
func (r *PreviewResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Previewer scans an uploaded file against a vocabulary snapshot and reports
// every data-quality conflict without mutating any state.
type Previewer struct {
	vocab Vocabulary
}

// NewPreviewer creates a previewer bound to a vocabulary snapshot.
func NewPreviewer(vocab Vocabulary) *Previewer {
	return &Previewer{vocab: vocab}
}

// Preview runs the full conflict scan. Row numbering starts at 2 because the
// header occupies physical line 1. When the file cannot be read or a required
// header is missing, a single file_read_error conflict is emitted and no row
// scanning occurs.
func (p *Previewer) Preview(content string) *PreviewResult {
	result := &PreviewResult{HeaderMap: make(HeaderMap)}

	columns, records, err := readCSV(content)
	if err != nil {
		result.Conflicts = append(result.Conflicts, newConflict(conflictParams{
			rowNumber:    1,
			columnName:   "file",
			invalidValue: "",
			errorType:    model.ConflictFileReadError,
			message:      fmt.Sprintf("Could not read the CSV file. Check the format and encoding: %v", err),
		}))
		return result
	}

	result.HeaderMap = ResolveHeaders(columns)
	if missing := result.HeaderMap.MissingRequired(); len(missing) > 0 {
		result.Conflicts = append(result.Conflicts, newConflict(conflictParams{
			rowNumber:    1,
			columnName:   "file",
			invalidValue: strings.Join(missing, ", "),
			errorType:    model.ConflictFileReadError,
			message:      fmt.Sprintf("Required columns are missing: %s.", strings.Join(missing, ", ")),
		}))
		return result
	}

	for i, record := range records {
		// Record index offset past the header, same numbering the importer
		// reports for save failures.
		rowNumber := i + 2
		row := rowValues(columns, record)
		p.checkEntryDate(result, row, rowNumber)
		p.checkAmount(result, row, rowNumber)
		p.checkTransactionType(result, row, rowNumber)
		p.checkCategory(result, row, rowNumber)
	}

	return result
}

func (p *Previewer) checkEntryDate(result *PreviewResult, row Row, rowNumber int) {
	value, ok := result.HeaderMap.Value(row, KeyEntryDate)
	if !ok {
		return
	}

	if value == "" {
		result.add(conflictParams{
			rowNumber:    rowNumber,
			columnName:   result.HeaderMap[KeyEntryDate],
			invalidValue: value,
			errorType:    model.ConflictBlankValue,
			message:      "The entry date cannot be blank.",
		})
		return
	}

	if _, ok := ParseISODate(value); !ok {
		result.add(conflictParams{
			rowNumber:    rowNumber,
			columnName:   result.HeaderMap[KeyEntryDate],
			invalidValue: value,
			errorType:    model.ConflictInvalidDateFormat,
			message:      "The date format is invalid. Use YYYY-MM-DD.",
		})
	}
}

func (p *Previewer) checkAmount(result *PreviewResult, row Row, rowNumber int) {
	value, ok := result.HeaderMap.Value(row, KeyAmount)
	if !ok {
		return
	}

	if value == "" {
		result.add(conflictParams{
			rowNumber:    rowNumber,
			columnName:   result.HeaderMap[KeyAmount],
			invalidValue: value,
			errorType:    model.ConflictBlankValue,
			message:      "The amount cannot be blank.",
		})
		return
	}

	if _, ok := ParseAmountStrict(value); !ok {
		result.add(conflictParams{
			rowNumber:    rowNumber,
			columnName:   result.HeaderMap[KeyAmount],
			invalidValue: value,
			errorType:    model.ConflictInvalidNumberFormat,
			message:      "The amount format is invalid. It must be a number (e.g. 1234,56 or -150.75).",
		})
	}
}

func (p *Previewer) checkTransactionType(result *PreviewResult, row Row, rowNumber int) {
	value, ok := result.HeaderMap.Value(row, KeyTransactionType)
	if !ok {
		return
	}

	if value == "" {
		result.add(conflictParams{
			rowNumber:    rowNumber,
			columnName:   result.HeaderMap[KeyTransactionType],
			invalidValue: value,
			errorType:    model.ConflictBlankValue,
			message:      "The transaction type cannot be blank.",
		})
		return
	}

	if !p.vocab.ContainsType(value) {
		result.add(conflictParams{
			rowNumber:         rowNumber,
			columnName:        result.HeaderMap[KeyTransactionType],
			columnKey:         KeyTransactionType,
			invalidValue:      value,
			errorType:         model.ConflictValueNotInList,
			message:           fmt.Sprintf("The value %q is not a valid transaction type.", value),
			resolutionOptions: p.vocab.Types,
		})
	}
}

func (p *Previewer) checkCategory(result *PreviewResult, row Row, rowNumber int) {
	value, ok := result.HeaderMap.Value(row, KeyCategory)
	if !ok || value == "" {
		// The category column is optional and blank cells are allowed.
		return
	}

	if !p.vocab.ContainsCategory(value) {
		result.add(conflictParams{
			rowNumber:         rowNumber,
			columnName:        result.HeaderMap[KeyCategory],
			columnKey:         KeyCategory,
			invalidValue:      value,
			errorType:         model.ConflictValueNotInList,
			message:           fmt.Sprintf("The category %q does not exist.", value),
			resolutionOptions: p.vocab.Categories,
		})
	}
}

type conflictParams struct {
	rowNumber         int
	columnName        string
	columnKey         string
	invalidValue      string
	errorType         model.ConflictType
	message           string
	resolutionOptions []string
}

func (r *PreviewResult) add(params conflictParams) {
	r.Conflicts = append(r.Conflicts, newConflict(params))
}

func newConflict(params conflictParams) model.Conflict {
	// Options mirror the vocabulary at detection time. A still-empty
	// vocabulary yields an empty list, leaving the operator only the
	// create-new and abort choices.
	var options []string
	if len(params.resolutionOptions) > 0 {
		options = append(options, params.resolutionOptions...)
	}

	return model.Conflict{
		ID:                uuid.NewString(),
		RowNumber:         params.rowNumber,
		ColumnName:        params.columnName,
		ColumnKey:         params.columnKey,
		InvalidValue:      params.invalidValue,
		ErrorType:         params.errorType,
		Message:           params.message,
		ResolutionOptions: options,
	}
}
