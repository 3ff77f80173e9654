package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordo-continuum/dossier/core/gateway"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records across both namespaces",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	manager, err := loadManager()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := buildStore(manager.Get(), logger)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	for _, ns := range []gateway.Namespace{gateway.NamespacePrimary, gateway.NamespaceSecondary} {
		rows, err := store.List(cmd.Context(), ns)
		if err != nil {
			return fmt.Errorf("list %s: %w", ns, err)
		}
		for _, row := range rows {
			name := row.Name
			if name == "" {
				name = "-"
			}
			rank := row.Rank
			if rank == "" {
				rank = "-"
			}
			fmt.Fprintf(out, "%-10s %-24s %-20s %s\n", ns, row.ID, name, rank)
		}
	}
	return nil
}
