package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/config"
	"github.com/laropanostra/shopapp/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "shopapi",
	Short:   "Shop API backed by SQL stored procedures",
	Long: `shopapi serves the clothing shop API. Every route forwards its
parameters to a fixed stored procedure and returns the result sets as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(files, cmd.Flags(), config.WithFlagKey("port", "shop.port"))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.Setup(os.Stdout, cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	flags.String("env", "", "environment: dev, prod (env: SHOPAPP_ENV)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: SHOPAPP_LOG_LEVEL)")
	flags.String("db-driver", "", "database driver: sqlserver, postgres (default: sqlserver)")
	flags.String("db-host", "", "database host (default: localhost)")
	flags.Int("db-port", 0, "database port (default: 1433)")
	flags.String("db-user", "", "database user (default: sa)")
	flags.String("db-password", "", "database password (env: SHOPAPP_DATABASE_PASSWORD)")
	flags.String("db-name", "", "database name (default: LAROPANOSTRAA)")
	flags.String("db-dsn", "", "full connection string, overrides the other db flags")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
