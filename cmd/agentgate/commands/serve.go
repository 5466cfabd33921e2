package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/logging"
	"github.com/agentgate/agentgate/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision HTTP server",
	Long: `Start AgentGate as a server exposing the decision and relation
administration HTTP API. Config-derived relations are synced on startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default from settings)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.drain()

	ctx := cmd.Context()
	if _, err := a.store.SyncFromConfig(ctx, a.config); err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	// Hot-reload: config edits re-derive the config-sourced relations
	// and refresh the legacy per-agent bash policy.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		err := config.Watch(watchCtx, workDir, func(cfg *config.Config) {
			a.enforcer.UpdateConfig(cfg)
			if _, err := a.store.SyncFromConfig(watchCtx, cfg); err != nil {
				logging.Error().Err(err).Msg("relation resync failed after config reload")
			}
		})
		if err != nil && watchCtx.Err() == nil {
			logging.Warn().Err(err).Msg("config watcher stopped")
		}
	}()

	serverConfig := server.DefaultConfig()
	serverConfig.Listen = a.settings.Listen
	if serveListen != "" {
		serverConfig.Listen = serveListen
	}

	srv := server.New(serverConfig, a.config, a.store, a.enforcer, a.bus)

	go func() {
		logging.Info().Str("listen", serverConfig.Listen).Msg("server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}

	logging.Info().Msg("server stopped")
	return nil
}
