package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/es-stream-helper/docgate/internal/application"
	"github.com/es-stream-helper/docgate/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Infof("config loaded: backend=%s index=%s keycloak=%v jwt=%v rate_limit=%v",
		cfg.Engine.Backend, cfg.Engine.Index, cfg.Keycloak.URL != "", cfg.JWT.Secret != "", cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := application.New(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
