package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gear6io/mtgapi/server"
	"github.com/gear6io/mtgapi/server/config"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the card API server",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

Examples:
  mtgapi serve
  mtgapi serve --config mtgapi.yml
  MTGAPI_API_PORT=9000 mtgapi serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create server")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Server failed")
		return err
	}

	<-ctx.Done()
	logger.Info().Msg("Shutting down card API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}
