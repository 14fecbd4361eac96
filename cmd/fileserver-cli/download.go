package main

import (
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
	downloadPrefix string
)

var downloadCmd = &cobra.Command{
	Use:   "download <path> [local-path]",
	Short: "Download a stored file",
	Long: `Download a stored file through the public prefix of the server.

Examples:
  fileserver-cli download productos/camisas/1718000000000-42-frente.png
  fileserver-cli download -o ./frente.png productos/camisas/1718000000000-42-frente.png
  fileserver-cli download --stdout docs/lista.txt | less`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().StringVar(&downloadPrefix, "public-prefix", clientcli.DefaultPublicPrefix, "URL path the server serves files under")
}

func runDownload(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}
	if localPath == "" {
		localPath = path.Base(remotePath)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	client, err := clientcli.New(cfg, clientcli.WithPublicPrefix(downloadPrefix))
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		RemotePath: remotePath,
		LocalPath:  localPath,
	})
	if err != nil {
		return err
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the file content.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
