package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fotonlabs/cashflow/internal/cli"
	"github.com/fotonlabs/cashflow/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category vocabulary",
		Long:  `List or extend the controlled set of categories the importer accepts.`,
	}

	cmd.AddCommand(listVocabularyCmd(service.FieldCategory, "categories"))
	cmd.AddCommand(addVocabularyCmd(service.FieldCategory, "category"))

	return cmd
}

func typesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage the transaction type vocabulary",
		Long:  `List or extend the controlled set of transaction types the importer accepts.`,
	}

	cmd.AddCommand(listVocabularyCmd(service.FieldTransactionType, "transaction types"))
	cmd.AddCommand(addVocabularyCmd(service.FieldTransactionType, "transaction type"))

	return cmd
}

func listVocabularyCmd(field, plural string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", plural),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			values, err := store.PossibleValues(ctx, field)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", plural, err)
			}

			if len(values) == 0 {
				fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("No %s configured yet.", plural)))
				return nil
			}

			for _, value := range values {
				fmt.Println("  " + value)
			}
			return nil
		},
	}
}

func addVocabularyCmd(field, singular string) *cobra.Command {
	return &cobra.Command{
		Use:   "add [value]",
		Short: fmt.Sprintf("Add a %s to the vocabulary", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			value := strings.TrimSpace(args[0])
			if value == "" {
				return fmt.Errorf("%s cannot be blank", singular)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			values, err := store.PossibleValues(ctx, field)
			if err != nil {
				return fmt.Errorf("failed to load vocabulary: %w", err)
			}

			for _, existing := range values {
				if strings.EqualFold(existing, value) {
					fmt.Println(cli.FormatWarning(
						fmt.Sprintf("%q already exists as %q", value, existing)))
					return nil
				}
			}

			values = append(values, value)
			if err := store.SetPossibleValues(ctx, field, values); err != nil {
				return fmt.Errorf("failed to save vocabulary: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s %q", singular, value)))
			return nil
		},
	}
}
