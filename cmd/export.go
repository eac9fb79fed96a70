package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/es-stream-helper/docgate/internal/application"
	"github.com/es-stream-helper/docgate/internal/document/service"
	"github.com/es-stream-helper/docgate/internal/export"
	"github.com/es-stream-helper/docgate/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload every document of a type to MinIO as one JSON array",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("type", "t", "", "document type to export (required)")
	exportCmd.Flags().StringP("key", "k", "", "object key (default <type>/<UTC timestamp>.json)")
	_ = exportCmd.MarkFlagRequired("type")
}

func runExport(cmd *cobra.Command, args []string) error {
	docType, _ := cmd.Flags().GetString("type")
	key, _ := cmd.Flags().GetString("key")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, closeEngine, err := application.NewEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer closeEngine()

	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	res, err := export.Run(ctx, service.New(eng, cfg.Engine.Index), store, docType, key, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d documents to %s/%s\n%s\n", res.Documents, cfg.MinIO.Bucket, res.Key, res.URL)
	return nil
}
