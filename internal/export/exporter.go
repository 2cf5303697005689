// Package export writes cash flow entries back out as semicolon-separated
// CSV, the same dialect the importer accepts.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// Header row written at the top of every export. The spellings match the
// importer's preferred aliases so a round trip re-imports cleanly.
var exportHeaders = []string{
	"Data do Lançamento",
	"Tipo de Transação",
	"Valor",
	"Categoria",
	"Descrição",
	"Status",
	"Responsável",
}

// Exporter streams entries from the store into CSV.
type Exporter struct {
	store    service.EntryStore
	progress io.Writer
}

// NewExporter creates an exporter. When progress is non-nil a progress bar is
// rendered to it while rows are written.
func NewExporter(store service.EntryStore, progress io.Writer) *Exporter {
	return &Exporter{store: store, progress: progress}
}

// Filename returns a timestamped default filename for an export.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("fluxo_caixa_%s.csv", time.Now().Format("20060102_150405"))
}

// Generate writes all entries matching the filter to w.
func (e *Exporter) Generate(ctx context.Context, w io.Writer, filter service.EntryFilter) error {
	entries, err := e.store.GetEntries(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	var bar *progressbar.ProgressBar
	if e.progress != nil {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetWriter(e.progress),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Exporting entries..."),
		)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range entries {
		if err := writer.Write(buildRow(&entries[i])); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func buildRow(entry *model.Entry) []string {
	assignee := ""
	if entry.AssigneeID != nil {
		assignee = fmt.Sprintf("%d", *entry.AssigneeID)
	}

	return []string{
		entry.EntryDate.Format("2006-01-02"),
		entry.TransactionType,
		entry.Amount.StringFixed(2),
		strings.Join(entry.Categories, ", "),
		entry.Subject,
		entry.Status,
		assignee,
	}
}
