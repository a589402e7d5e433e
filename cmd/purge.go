package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"shortify-be/internal/repository"
	"shortify-be/internal/service"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-unverified",
	Short: "Delete unverified accounts whose verification window has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer db.Close()

		purger := service.NewPurger(repository.NewUserRepository(db), cfg.Links.PurgeInterval, log)
		n, err := purger.PurgeOnce(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("purge finished", slog.Int64("deleted", n))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(purgeCmd)
}
