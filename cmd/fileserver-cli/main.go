package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	server     string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "fileserver-cli",
	Version:       version,
	Short:         "Client for the shop file server",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `fileserver-cli uploads, lists and deletes product images and documents
on the shop file server.

The server is resolved in this order, later entries winning:
  1. the selected profile of the config file (--profile, SHOPAPP_PROFILE)
  2. SHOPAPP_ENDPOINT
  3. --server`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.shopapp/config.yaml, env: SHOPAPP_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: SHOPAPP_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: "+clientcli.DefaultEndpoint+", env: SHOPAPP_ENDPOINT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file from --config, SHOPAPP_CONFIG or
// the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profile
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}
	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != "" || name != ""

	if configPath := getConfigPath(); configPath != "" {
		cf, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := cf.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit:
			// A missing default file is fine, a file the user asked for is not.
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{Endpoint: server})
	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}

// exitError is returned when we want to exit with a specific code
// but don't want to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
