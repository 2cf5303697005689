package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fotonlabs/cashflow/internal/cli"
	"github.com/fotonlabs/cashflow/internal/export"
	"github.com/fotonlabs/cashflow/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries to a CSV file",
		Long: `Write entries out as semicolon-separated CSV in the same dialect the
importer accepts, so an exported file can be re-imported elsewhere.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: timestamped name in the current directory)")
	cmd.Flags().String("project", "", "Only export entries for this project")
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	project, _ := cmd.Flags().GetString("project")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := service.EntryFilter{Project: project}
	if from != "" {
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		filter.StartDate = &start
	}
	if to != "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		filter.EndDate = &end
	}

	exporter := export.NewExporter(store, os.Stderr)
	if output == "" {
		output = exporter.Filename()
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	if err := exporter.Generate(ctx, f, filter); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess("Exported entries to " + output))
	return nil
}
