package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/hookbox/internal/adapters/sqlstore"
	"github.com/fr0stylo/hookbox/internal/app/domain"
	appservices "github.com/fr0stylo/hookbox/internal/app/services"
)

func newListCmd() *cobra.Command {
	var (
		query  domain.ListQuery
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored messages",
		Example: `  hookctl list --source billing --page-size 50
  hookctl list --start-date 2025-02-01 --end-date 2025-02-28 --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := domain.ParseListQuery(query)
			if err != nil {
				return err
			}

			database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			reader := appservices.NewMessageReadService(sqlstore.NewMessageStore(database))
			page, err := reader.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list messages: %w", err)
			}

			return printPage(cmd.OutOrStdout(), output, page)
		},
	}

	cmd.Flags().StringVar(&query.Page, "page", "1", "page number")
	cmd.Flags().StringVar(&query.PageSize, "page-size", "10", "page size (max 100)")
	cmd.Flags().StringVar(&query.Source, "source", "", "exact source filter")
	cmd.Flags().StringVar(&query.StartDate, "start-date", "", "inclusive lower timestamp bound")
	cmd.Flags().StringVar(&query.EndDate, "end-date", "", "inclusive upper timestamp bound")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json, yaml, table")
	return cmd
}
