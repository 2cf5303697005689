package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fotonlabs/cashflow/internal/cli"
	"github.com/fotonlabs/cashflow/internal/importer"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Scan a CSV file for import conflicts without importing",
		Long: `Scan a CSV export against the configured vocabularies and list every
data-quality conflict: blank cells, bad date or number formats, and values
missing from the transaction type or category lists. Nothing is written.

Examples:
  # Human-readable conflict report
  cashflow preview ~/Downloads/fluxo_caixa.csv

  # Machine-readable, for building a resolutions file
  cashflow preview --json ~/Downloads/fluxo_caixa.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	cmd.Flags().Bool("json", false, "Print conflicts as JSON")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := importer.New(store, store, store)
	result, err := pipeline.Preview(ctx, string(content))
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result.Conflicts)
	}

	if !result.HasConflicts() {
		fmt.Println(cli.FormatSuccess("No conflicts found. The file is ready to import."))
		return nil
	}

	fmt.Println(cli.RenderBox("Import preview",
		fmt.Sprintf("%s %d conflict(s) found in %s", cli.FileIcon, len(result.Conflicts), args[0])))

	for _, conflict := range result.Conflicts {
		line := fmt.Sprintf("row %d, %s [%s]: %s",
			conflict.RowNumber, conflict.ColumnName, conflict.ErrorType, conflict.Message)
		fmt.Println(cli.FormatWarning(line))
		if len(conflict.ResolutionOptions) > 0 {
			fmt.Println(cli.SubtleStyle.Render(
				fmt.Sprintf("    valid options: %v", conflict.ResolutionOptions)))
		}
	}

	return nil
}
