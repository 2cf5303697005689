package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fotonlabs/cashflow/internal/cli"
	"github.com/fotonlabs/cashflow/internal/common"
	"github.com/fotonlabs/cashflow/internal/importer"
	"github.com/fotonlabs/cashflow/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import cash flow entries from a CSV file",
		Long: `Import a CSV export in two phases. The file is first previewed against
the configured vocabularies; any conflicting value must be resolved, either
interactively or through a resolutions file, before the batch is committed.
The commit is all-or-nothing: a single rejected row rolls the whole batch
back.

Examples:
  # Interactive: resolve conflicts at the prompt
  cashflow import ~/Downloads/fluxo_caixa.csv --project acme

  # Non-interactive: supply resolutions captured earlier
  cashflow import entries.csv --resolutions resolutions.json`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("project", "", "Project the entries belong to")
	cmd.Flags().String("status", "", "Status assigned to rows that carry none (default from config)")
	cmd.Flags().String("resolutions", "", "JSON file with conflict resolutions")
	cmd.Flags().Bool("no-input", false, "Fail instead of prompting when conflicts exist")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetString("project")
	status, _ := cmd.Flags().GetString("status")
	resolutionsPath, _ := cmd.Flags().GetString("resolutions")
	noInput, _ := cmd.Flags().GetBool("no-input")
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

	resolutions, err := loadResolutions(resolutionsPath)
	if err != nil {
		return err
	}

	if status == "" {
		status = viper.GetString("import.default_status")
	}

	var bar *progressbar.ProgressBar
	pipeline := importer.New(store, store, store,
		importer.WithDefaultStatus(status),
		importer.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Importing rows..."),
				)
			}
			_ = bar.Set(done)
		}))

	// Preview first; a clean file goes straight to import.
	preview, err := pipeline.Preview(ctx, string(content))
	if err != nil {
		return err
	}

	if preview.HasConflicts() && resolutions == nil {
		if noInput {
			return fmt.Errorf("%d conflict(s) found; rerun without --no-input or supply --resolutions", len(preview.Conflicts))
		}
		prompter := cli.NewPrompter(os.Stdin, os.Stdout)
		resolutions, err = prompter.ResolveConflicts(ctx, preview.Conflicts)
		if err != nil {
			if errors.Is(err, cli.ErrResolutionAborted) {
				fmt.Println(cli.FormatInfo("Import aborted, nothing was committed."))
				return nil
			}
			return err
		}
	}

	result := pipeline.Import(ctx, importer.Batch{
		Content:     string(content),
		Filename:    filepath.Base(args[0]),
		Project:     project,
		Author:      currentUsername(),
		Resolutions: resolutions,
	})

	return reportResult(result)
}

// loadResolutions reads an operator-supplied resolutions file, typically
// assembled from `preview --json` output.
func loadResolutions(path string) (model.Resolutions, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolutions file: %w", err)
	}

	var resolutions model.Resolutions
	if err := json.Unmarshal(raw, &resolutions); err != nil {
		return nil, fmt.Errorf("invalid resolutions file: %w", err)
	}
	return resolutions, nil
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func reportResult(result *model.ImportResult) error {
	if !result.Success() {
		fmt.Println(cli.FormatError("Import failed, the batch was rolled back:"))
		for _, message := range result.Errors {
			fmt.Println(cli.ErrorStyle.Render("  - " + message))
		}
		return fmt.Errorf("%w with %d error(s)", common.ErrImportFailed, len(result.Errors))
	}

	fmt.Println(cli.FormatSuccess(
		fmt.Sprintf("Imported %d entries %s", result.ImportedCount, cli.MoneyIcon)))

	if len(result.NewlyCreatedCategories) > 0 {
		fmt.Println(cli.FormatInfo(
			"New categories created: " + strings.Join(result.NewlyCreatedCategories, ", ")))
	}
	if len(result.NewlyCreatedTypes) > 0 {
		fmt.Println(cli.FormatInfo(
			"New transaction types created: " + strings.Join(result.NewlyCreatedTypes, ", ")))
	}

	return nil
}
