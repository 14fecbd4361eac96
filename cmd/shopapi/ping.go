package main

import (
	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/config"
	"github.com/laropanostra/shopapp/database"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the database connection",
	Long: `Open a connection with the configured database settings and ping it.
Exits non-zero when the database cannot be reached.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	cmd.Printf("%s database %q at %s is reachable\n", cfg.Database.Driver, cfg.Database.Name, cfg.Database.Host)
	return nil
}
