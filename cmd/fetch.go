package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordo-continuum/dossier/core/dossier"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Fetch a record and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	id := args[0]
	doc, ns, err := store.Fetch(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), dossier.Summary(id, ns, doc))
	return nil
}
