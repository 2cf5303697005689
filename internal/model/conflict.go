package model

// ConflictType tags the kind of data-quality problem detected during preview.
type ConflictType string

const (
	// ConflictBlankValue flags a required cell that is empty.
	ConflictBlankValue ConflictType = "blank_value"
	// ConflictInvalidDateFormat flags a date cell that is not ISO formatted.
	ConflictInvalidDateFormat ConflictType = "invalid_date_format"
	// ConflictInvalidNumberFormat flags an amount cell that does not parse.
	ConflictInvalidNumberFormat ConflictType = "invalid_number_format"
	// ConflictValueNotInList flags a value missing from the controlled vocabulary.
	ConflictValueNotInList ConflictType = "value_not_in_list"
	// ConflictFileReadError flags a file that could not be read or mapped at all.
	ConflictFileReadError ConflictType = "file_read_error"
)

// Conflict is one detected data-quality problem, produced by the preview stage
// and consumed by the resolution UI. Conflicts are immutable data; the
// InvalidValue field always holds the raw text exactly as it appeared in the
// source row.
type Conflict struct {
	ID                string       `json:"id"`
	RowNumber         int          `json:"row_number"`
	ColumnName        string       `json:"column_name"`
	ColumnKey         string       `json:"column_key,omitempty"`
	InvalidValue      string       `json:"invalid_value"`
	ErrorType         ConflictType `json:"error_type"`
	Message           string       `json:"message"`
	ResolutionOptions []string     `json:"resolution_options,omitempty"`
}
