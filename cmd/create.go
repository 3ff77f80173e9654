package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ordo-continuum/dossier/core/dossier"
	"github.com/ordo-continuum/dossier/core/gateway"
)

var createSecondary bool

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new record with default fields",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().BoolVar(&createSecondary, "secondary", false, "create in the secondary namespace")
}

func runCreate(cmd *cobra.Command, args []string) error {
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

	name := strings.Join(args, " ")
	id := dossier.MintID(name)
	doc := dossier.NewDocument(name)

	ns := gateway.NamespacePrimary
	if createSecondary {
		ns = gateway.NamespaceSecondary
	}

	if err := store.Create(cmd.Context(), id, ns, doc); err != nil {
		return fmt.Errorf("create %q: %w", id, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
