package cmd

import (
	"github.com/spf13/cobra"

	"github.com/es-stream-helper/docgate/internal/config"
	"github.com/es-stream-helper/docgate/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "docgate",
	Short:         "HTTP gateway for listing, inserting, updating and deleting documents in a search engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	return cfg, nil
}
