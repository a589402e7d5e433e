package cmd

import (
	"github.com/spf13/cobra"

	"shortify-be/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer db.Close()

		log.Info("database migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.MigrationStatus(cmd.Context(), db)
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	RootCmd.AddCommand(migrateCmd)
}
