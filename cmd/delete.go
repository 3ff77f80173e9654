package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	// Resolve which namespace holds the record; the delete targets it.
	_, ns, err := store.Fetch(cmd.Context(), id)
	if err != nil {
		return err
	}

	if err := store.Delete(cmd.Context(), id, ns); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	return nil
}
