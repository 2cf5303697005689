package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fotonlabs/cashflow/internal/model"
)

// ErrResolutionAborted is returned when the operator abandons the import from
// the resolution prompt.
var ErrResolutionAborted = errors.New("import aborted by operator")

// Prompter walks an operator through the conflicts a preview detected and
// collects a resolution for each distinct flagged value.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewPrompter creates a prompter reading choices from reader.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// ResolveConflicts prompts for every resolvable conflict and returns the
// resolution map to submit with the import. Conflicts without a column key
// (blank cells, format defects) cannot be resolved interactively; they are
// shown as warnings since the import degrades those fields instead of
// rejecting the rows.
func (p *Prompter) ResolveConflicts(ctx context.Context, conflicts []model.Conflict) (model.Resolutions, error) {
	resolutions := make(model.Resolutions)
	seen := make(map[string]bool)

	for _, conflict := range conflicts {
		if conflict.ErrorType == model.ConflictFileReadError {
			return nil, fmt.Errorf("%s", conflict.Message)
		}

		if conflict.ErrorType != model.ConflictValueNotInList || conflict.ColumnKey == "" {
			fmt.Fprintln(p.writer, FormatWarning(
				fmt.Sprintf("row %d, %s: %s", conflict.RowNumber, conflict.ColumnName, conflict.Message)))
			continue
		}

		// Each distinct value needs only one decision, however many rows
		// reference it.
		dedupeKey := conflict.ColumnKey + "\x00" + conflict.InvalidValue
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		resolution, err := p.promptResolution(ctx, conflict)
		if err != nil {
			return nil, err
		}
		resolutions.Set(conflict.ColumnKey, conflict.InvalidValue, resolution)
	}

	return resolutions, nil
}

func (p *Prompter) promptResolution(ctx context.Context, conflict model.Conflict) (string, error) {
	content := fmt.Sprintf("Row %d, column %q\nValue: %s\n%s",
		conflict.RowNumber,
		conflict.ColumnName,
		WarningStyle.Render(conflict.InvalidValue),
		conflict.Message)
	fmt.Fprintln(p.writer, RenderBox("Unrecognized value", content))

	for i, option := range conflict.ResolutionOptions {
		fmt.Fprintf(p.writer, "  [%d] Map to %q\n", i+1, option)
	}
	fmt.Fprintf(p.writer, "  [C] Create %q as a new value\n", conflict.InvalidValue)
	fmt.Fprintln(p.writer, "  [A] Abort the import")
	fmt.Fprintln(p.writer)

	for {
		fmt.Fprint(p.writer, FormatPrompt("Choice"))
		choice, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		switch strings.ToLower(choice) {
		case "c":
			return model.ResolutionCreateNew, nil
		case "a":
			return "", ErrResolutionAborted
		default:
			index, err := strconv.Atoi(choice)
			if err == nil && index >= 1 && index <= len(conflict.ResolutionOptions) {
				return conflict.ResolutionOptions[index-1], nil
			}
			fmt.Fprintln(p.writer, FormatError("Invalid choice, try again."))
		}
	}
}
