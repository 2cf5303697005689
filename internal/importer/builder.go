package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// importErrorsHeader delimits the diagnostic block appended to an entry's
// description when soft errors were absorbed during the build.
const importErrorsHeader = "--- IMPORT ERRORS ---"

// defaultTransactionType is used when the file has no transaction type column
// at all.
const defaultTransactionType = string(model.TransactionTypeExpense)

// Builder assembles validated rows into persistable entries. Its policy is
// graceful degradation, not rejection: a bad date becomes today, a bad amount
// becomes zero, an unmatched assignee is left unset, and every such defect is
// recorded in a diagnostic block inside the entry description so the operator
// can fix it after the fact without losing the rest of the row.
type Builder struct {
	headers       HeaderMap
	applier       *Applier
	users         service.UserDirectory
	project       string
	author        string
	sourceFile    string
	defaultStatus string
	now           func() time.Time
}

// BuilderConfig carries the batch-level context the builder needs.
type BuilderConfig struct {
	Headers       HeaderMap
	Applier       *Applier
	Users         service.UserDirectory
	Project       string
	Author        string
	SourceFile    string
	DefaultStatus string
}

// NewBuilder creates a row builder for one import batch.
func NewBuilder(cfg BuilderConfig) *Builder {
	status := cfg.DefaultStatus
	if status == "" {
		status = "new"
	}
	return &Builder{
		headers:       cfg.Headers,
		applier:       cfg.Applier,
		users:         cfg.Users,
		project:       cfg.Project,
		author:        cfg.Author,
		sourceFile:    cfg.SourceFile,
		defaultStatus: status,
		now:           time.Now,
	}
}

// Build assembles one row into an entry, or returns nil when the row must be
// skipped. The only hard-skip condition is a transaction type that resolves
// to nothing usable; every other defect degrades into a defaulted field plus
// a diagnostic note.
func (b *Builder) Build(ctx context.Context, row Row, rowNumber int) *model.Entry {
	var diagnostics []string

	transactionType, ok := b.resolveTransactionType(row)
	if !ok {
		slog.Warn("skipping row with unusable transaction type", "row", rowNumber)
		return nil
	}

	entry := &model.Entry{
		TransactionType: transactionType,
		Project:         b.project,
		Author:          b.author,
		Status:          b.defaultStatus,
	}

	subject, _ := b.headers.Value(row, KeyDescription)
	entry.Subject = subject

	entry.EntryDate = b.resolveDate(row, &diagnostics)
	entry.Amount = b.resolveAmount(row, &diagnostics)
	entry.Categories = b.resolveCategories(row)

	if status, ok := b.headers.Value(row, KeyStatus); ok && status != "" {
		entry.Status = status
	}

	if attachment, ok := b.headers.Value(row, KeyAttachment); ok && attachment != "" {
		entry.SourceFile = attachment
	} else {
		entry.SourceFile = b.sourceFile
	}

	b.resolveAssignee(ctx, row, entry, &diagnostics)

	entry.Description = appendDiagnostics(entry.Description, diagnostics)

	return entry
}

// resolveTransactionType resolves and normalizes the type column. A file with
// no type column defaults every row to expense; a present-but-blank cell is
// unusable and skips the row. Already-resolved values are trusted here, the
// preview stage caught invalid ones earlier.
func (b *Builder) resolveTransactionType(row Row) (string, bool) {
	raw, present := b.headers.Value(row, KeyTransactionType)
	if !present {
		return defaultTransactionType, true
	}

	resolved := strings.ToLower(strings.TrimSpace(b.applier.Resolve(KeyTransactionType, raw)))
	if resolved == "" {
		return "", false
	}
	return resolved, true
}

func (b *Builder) resolveDate(row Row, diagnostics *[]string) time.Time {
	raw, present := b.headers.Value(row, KeyEntryDate)
	if !present {
		return b.now()
	}

	if parsed, ok := ParseDate(raw); ok {
		return parsed
	}

	*diagnostics = append(*diagnostics, fmt.Sprintf("data: %s", orEmpty(raw)))
	return b.now()
}

func (b *Builder) resolveAmount(row Row, diagnostics *[]string) decimal.Decimal {
	raw, present := b.headers.Value(row, KeyAmount)
	if !present {
		return decimal.Zero
	}

	amount, ok := ParseAmountStrict(raw)
	if !ok {
		*diagnostics = append(*diagnostics, fmt.Sprintf("valor: %s", orEmpty(raw)))
		return decimal.Zero
	}

	// A parsed zero from text that does not literally spell zero means the
	// parser degraded something it could not represent.
	if amount.IsZero() && !IsLiteralZero(raw) {
		*diagnostics = append(*diagnostics, fmt.Sprintf("valor: %s", orEmpty(raw)))
	}

	return amount
}

// resolveCategories resolves the category cell. The preview flags the whole
// cell text as one conflict, so the resolution map is keyed by the full cell;
// it must be resolved before splitting, or an operator mapping for a
// multi-value cell would never match. The resolved text is then split on
// commas, trimmed, blanks dropped, and each part resolved independently so
// single-value mappings keep working inside lists.
func (b *Builder) resolveCategories(row Row) []string {
	raw, present := b.headers.Value(row, KeyCategory)
	if !present || raw == "" {
		return nil
	}

	resolved := b.applier.Resolve(KeyCategory, raw)

	var categories []string
	for _, part := range strings.Split(resolved, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		categories = append(categories, b.applier.Resolve(KeyCategory, part))
	}
	return categories
}

// resolveAssignee looks the responsible column up in the user directory. A
// supplied name with no match does not fail the row: the original text lands
// in the diagnostic block and the assignee stays unset.
func (b *Builder) resolveAssignee(ctx context.Context, row Row, entry *model.Entry, diagnostics *[]string) {
	name, present := b.headers.Value(row, KeyResponsible)
	if !present || name == "" {
		return
	}

	user, err := b.users.FindUserByName(ctx, name)
	if err != nil {
		slog.Warn("user lookup failed", "name", name, "error", err)
	}
	if err != nil || user == nil {
		*diagnostics = append(*diagnostics, fmt.Sprintf("responsável: %s", name))
		return
	}

	entry.AssigneeID = &user.ID
}

func appendDiagnostics(description string, diagnostics []string) string {
	if len(diagnostics) == 0 {
		return description
	}

	var sb strings.Builder
	sb.WriteString(description)
	if description != "" {
		sb.WriteString("\n\n")
	}
	sb.WriteString(importErrorsHeader)
	for _, diagnostic := range diagnostics {
		sb.WriteString("\n")
		sb.WriteString(diagnostic)
	}
	sb.WriteString("\n---")
	return sb.String()
}

func orEmpty(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "empty"
	}
	return raw
}
