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
	Use:     "fileserver",
	Short:   "Upload server for shop images and documents",
	Long: `fileserver stores uploaded files under a local directory, serves them
read-only over HTTP and lets clients list and delete them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(files, cmd.Flags(), config.WithFlagKey("port", "fileserver.port"))
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
	flags.String("upload-dir", "", "upload root directory (default: ./uploads, env: SHOPAPP_FILESERVER_UPLOAD_DIR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
