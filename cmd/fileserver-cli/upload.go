package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/clientcli"
)

var (
	uploadRecursive bool
	uploadBatchSize int
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [local-path...] <remote-dir>",
	Short: "Upload files to the server",
	Long: `Upload one or more files into a directory of the upload root.

A single file uses the single upload route; several files are sent in
batches to the multiple upload route. Only the extensions allowed by the
server are accepted.

Examples:
  fileserver-cli upload ./frente.png productos/camisas
  fileserver-cli upload ./a.png ./b.png ./c.png productos/camisas
  fileserver-cli upload -r ./catalogo productos`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directories recursively")
	uploadCmd.Flags().IntVar(&uploadBatchSize, "batch-size", clientcli.DefaultBatchSize, "files per request")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPaths: args[:len(args)-1],
		RemoteDir:  args[len(args)-1],
		Recursive:  uploadRecursive,
		BatchSize:  uploadBatchSize,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
