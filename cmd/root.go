// Package cmd provides the CLI commands for the dossier service.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordo-continuum/dossier/core/config"
	"github.com/ordo-continuum/dossier/core/gateway"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Dossier - character record editing service",
	Long: `Dossier serves and edits character records stored in a remote
document store, with a websocket surface for interactive editing and
one-shot commands for record management.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFileName+")")
}

// =============================================================================
// Shared Wiring
// =============================================================================

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func loadManager() (*config.Manager, error) {
	manager := config.NewManager(configPath)
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager, nil
}

// buildStore selects the remote client or the offline on-disk store
// from the configuration. The returned closer releases whichever was
// built.
func buildStore(cfg *config.Config, logger *slog.Logger) (gateway.Store, func(), error) {
	if cfg.Store.Offline {
		local, err := gateway.NewLocalStore(cfg.Store.LocalPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return local, func() { local.Close() }, nil
	}

	client, err := gateway.NewClient(gateway.Config{
		ProjectID:        cfg.Store.ProjectID,
		AppID:            cfg.Store.AppID,
		APIKey:           cfg.Store.APIKey,
		BaseURL:          cfg.Store.BaseURL,
		CollectionRoot:   cfg.Store.CollectionRoot,
		Collection:       cfg.Store.Collection,
		PrimarySegment:   cfg.Store.PrimarySegment,
		SecondarySegment: cfg.Store.SecondarySegment,
		Timeout:          cfg.Store.Timeout,
		CacheTTL:         cfg.Store.CacheTTL,
		Logger:           logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
