package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/config"
	"github.com/laropanostra/shopapp/filesystem"
	shophttp "github.com/laropanostra/shopapp/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the file server. The upload directory is created if missing.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5113, "HTTP server port")
	serveCmd.Flags().Int64("max-file-size", 0, "maximum size of one file in bytes (default: 5242880)")
	serveCmd.Flags().Int("max-files", 0, "maximum files per upload-multiple request (default: 10)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	fsCfg := cfg.FileServer

	if err = os.MkdirAll(fsCfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	root, err := os.OpenRoot(fsCfg.UploadDir)
	if err != nil {
		return fmt.Errorf("open upload root: %w", err)
	}
	defer func() { _ = root.Close() }()

	policy := fsCfg.Policy()
	store := filesystem.NewFileStorage(root, policy)

	handler := shophttp.NewFileHandler(shophttp.FileHandlerConfig{
		PublicPrefix: fsCfg.PublicPrefix,
		ExposeErrors: fsCfg.ExposeErrors,
		CORS:         cfg.CORS,
	}, store)

	addr := fmt.Sprintf(":%d", fsCfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"upload_dir", root.Name(),
		"public_prefix", fsCfg.PublicPrefix,
		"max_file_size", humanize.Bytes(uint64(policy.MaxFileSize)),
		"allowed_extensions", policy.AllowedExtensions,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
