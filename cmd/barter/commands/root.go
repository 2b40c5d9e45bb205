package commands

import (
	"github.com/spf13/cobra"

	"barter/internal/config"
	applog "barter/internal/log"
)

var cfg config.Config

func Execute() error {
	root := &cobra.Command{
		Use:          "barter",
		Short:        "Peer-to-peer exchange marketplace",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			return applog.Init(cfg.LogLevel, cfg.LogFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			applog.Sync()
		},
	}

	root.AddCommand(serveCmd(), migrateCmd())
	return root.Execute()
}
