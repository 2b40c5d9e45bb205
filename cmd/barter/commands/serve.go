package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"barter/internal/events"
	"barter/internal/http/handlers"
	applog "barter/internal/log"
	"barter/internal/metrics"
	"barter/internal/repos"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			var pub events.Publisher = events.Nop{}
			if cfg.NATSURL != "" {
				np, err := events.NewNATSPublisher(cfg.NATSURL, "barter")
				if err != nil {
					applog.L().Warn("nats.connect", zap.String("url", cfg.NATSURL), zap.Error(err))
				} else {
					pub = np
				}
			}
			defer pub.Close()

			deps := handlers.NewDeps(db, cfg, pub, metrics.New("barter"))
			app := handlers.NewApp(deps)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = app.ShutdownWithTimeout(10 * time.Second)
			}()

			applog.L().Info("server.start", zap.String("port", cfg.Port), zap.String("db", cfg.DBDSN))
			return app.Listen(":" + cfg.Port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
