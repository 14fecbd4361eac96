package main

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List a directory on the server",
	Long: `List the files and subdirectories of a directory of the upload root.

Examples:
  fileserver-cli list productos
  fileserver-cli list --json productos/camisas`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
