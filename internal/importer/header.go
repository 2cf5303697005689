package importer

import (
	"strings"
)

// Canonical column keys. Uploaded files carry arbitrary, locale-dependent
// header text; every column the pipeline understands is addressed internally
// by one of these keys.
const (
	KeyEntryDate       = "entry_date"
	KeyDescription     = "description"
	KeyAmount          = "amount"
	KeyTransactionType = "transaction_type"
	KeyCategory        = "category"
	KeyStatus          = "status"
	KeyResponsible     = "responsible_name"
	KeyAttachment      = "attachment_name"
)

// headerAlias binds a canonical key to the header spellings accepted for it.
// Order matters twice: keys are matched in declaration order, and within a
// key the first alias that matches a column wins.
type headerAlias struct {
	key     string
	aliases []string
}

var headerAliases = []headerAlias{
	{KeyEntryDate, []string{"Data do Lançamento", "Entry Date", "Date"}},
	{KeyDescription, []string{"Descrição", "Description", "Subject"}},
	{KeyAmount, []string{"Valor", "Amount", "Value"}},
	{KeyTransactionType, []string{"Tipo de Transação", "Transaction Type", "Type"}},
	{KeyCategory, []string{"Categoria", "Category"}},
	{KeyStatus, []string{"Status", "Situação"}},
	{KeyResponsible, []string{"Responsável", "Responsible", "Assignee"}},
	{KeyAttachment, []string{"Anexo", "Attachment"}},
}

// requiredKeys are the canonical columns an uploaded file must provide.
var requiredKeys = []string{KeyDescription, KeyAmount, KeyTransactionType}

// HeaderMap maps a canonical column key to the actual column name found in
// the uploaded file. Built once per batch, immutable afterward. A key is
// absent when no alias matched.
type HeaderMap map[string]string

// ResolveHeaders maps the raw header row of an uploaded file onto canonical
// keys using the alias table. Matching is case-insensitive and trims
// whitespace on the file side.
func ResolveHeaders(columns []string) HeaderMap {
	hm := make(HeaderMap)
	for _, entry := range headerAliases {
		for _, column := range columns {
			if matchesAlias(entry.aliases, column) {
				hm[entry.key] = column
				break
			}
		}
	}
	return hm
}

func matchesAlias(aliases []string, column string) bool {
	column = strings.TrimSpace(column)
	for _, alias := range aliases {
		if strings.EqualFold(alias, column) {
			return true
		}
	}
	return false
}

// MissingRequired returns the preferred spelling of every required column the
// file did not provide, in alias-table order.
func (hm HeaderMap) MissingRequired() []string {
	var missing []string
	for _, key := range requiredKeys {
		if _, ok := hm[key]; ok {
			continue
		}
		for _, entry := range headerAliases {
			if entry.key == key {
				missing = append(missing, entry.aliases[0])
				break
			}
		}
	}
	return missing
}

// DetectSeparator sniffs the field separator from the first physical line of
// a file: more commas than semicolons means comma, otherwise semicolon.
// Applied once per file, before any column mapping.
func DetectSeparator(firstLine string) rune {
	if strings.Count(firstLine, ",") > strings.Count(firstLine, ";") {
		return ','
	}
	return ';'
}

// Row gives name-addressed access to one CSV record.
type Row map[string]string

// rowValues pairs the header row with one record. Short records leave the
// trailing columns absent rather than failing.
func rowValues(columns, record []string) Row {
	row := make(Row, len(columns))
	for i, column := range columns {
		if i < len(record) {
			row[column] = record[i]
		}
	}
	return row
}

// Value returns the trimmed cell under a canonical key, and whether the
// column exists in the file at all.
func (hm HeaderMap) Value(row Row, key string) (string, bool) {
	column, ok := hm[key]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(row[column]), true
}
