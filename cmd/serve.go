package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordo-continuum/dossier/core/controller"
	"github.com/ordo-continuum/dossier/core/session"
	"github.com/ordo-continuum/dossier/core/surface"
)

// shutdownGrace bounds how long in-flight connections get on shutdown.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the websocket editing surface",
	Long: `Serve runs the interactive editing service. Each websocket
connection at /ws becomes its own surface with a private working copy.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	manager, err := loadManager()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer manager.Close()

	if err := manager.Watch(func(err error) {
		logger.Warn("config reload failed", "error", err)
	}); err != nil {
		logger.Warn("config watch unavailable", "error", err)
	}

	cfg := manager.Get()
	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer closeStore()

	registry := session.NewRegistry(session.Config{
		MaxSessions: cfg.Session.MaxSessions,
		IdleTTL:     cfg.Session.IdleTTL,
		Logger:      logger,
	})
	ctrl := controller.New(controller.Config{
		RefreshPolicy:  controller.RefreshPolicy(cfg.Controller.RefreshPolicy),
		DebounceWindow: cfg.Controller.DebounceWindow,
		Logger:         logger,
	}, store, registry)

	mux := http.NewServeMux()
	mux.Handle("/ws", surface.NewHandler(ctrl, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", cfg.Server.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(ctx)
}
