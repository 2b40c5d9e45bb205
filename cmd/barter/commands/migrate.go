package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"barter/internal/repos"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// OpenDB applies the schema.
			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("Schema ready in %s\n", cfg.DBDSN)
			return nil
		},
	}
}
