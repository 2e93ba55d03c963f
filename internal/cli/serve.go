package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if seed {
				cfg.SeedOnStart = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(context.Background()); err != nil {
					a.logger.Warn("shutdown", zap.Error(err))
				}
			}()

			if cfg.SeedOnStart {
				if _, err := a.uc.Seed(ctx); err != nil {
					return err
				}
			}

			e := server.New(cfg, a.uc, a.logger, a.tracer, a.registry)
			a.logger.Info("listening",
				zap.String("addr", cfg.Port),
				zap.String("store", cfg.StoreDriver),
				zap.Bool("auth", cfg.AuthEnabled()),
			)
			return server.Start(ctx, e, cfg.Port, cfg.ShutdownTimeout)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the sample products when the store is empty")
	return cmd
}
