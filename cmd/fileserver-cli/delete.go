package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <path> [path...]",
	Short: "Delete files from the server",
	Long: `Delete one or more files, relative to the upload root.

Examples:
  fileserver-cli delete productos/camisas/1718000000000-42-frente.png
  fileserver-cli delete -q temp/a.png temp/b.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Paths: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
