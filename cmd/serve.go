package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/export"
	"github.com/pakarguru/modulajar/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		deps := server.Deps{
			History:     st.HistoryRepo(),
			Settings:    cfg.DocumentSettings(),
			School:      cfg.Defaults.School,
			HistoryKeep: cfg.Store.HistoryKeep,
			Logger:      logger,
		}

		if svc, err := newService(ctx, st.EventRepo()); err != nil {
			logger.Warn("generation disabled", zap.Error(err))
		} else {
			deps.Generator = svc
		}

		if cfg.Export.S3Enabled() {
			client, err := export.NewS3Client(ctx, cfg.Export)
			if err != nil {
				return err
			}
			deps.Uploader = export.NewUploader(client, cfg.Export, logger)
		}

		if cfg.Maintenance.Schedule != "" && cfg.Maintenance.Retention > 0 {
			m := &server.Maintenance{
				Events:    st.EventRepo(),
				History:   st.HistoryRepo(),
				Retention: cfg.Maintenance.Retention,
				Logger:    logger.Named("maintenance"),
			}
			c, err := m.Schedule(cfg.Maintenance)
			if err != nil {
				return err
			}
			defer c.Stop()
		}

		if cfg.Server.APIKey == "" {
			logger.Warn("API key not set, /api is open")
		}
		if err := server.New(cfg.Server, deps).Run(ctx); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
