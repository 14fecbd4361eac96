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

	"github.com/spf13/cobra"

	"github.com/laropanostra/shopapp/config"
	"github.com/laropanostra/shopapp/database"
	shophttp "github.com/laropanostra/shopapp/http"
	"github.com/laropanostra/shopapp/shop"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the shop API HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 4112, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()
	slog.Info("connected to database", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "name", cfg.Database.Name)

	gateway, err := database.NewGateway(db, cfg.Database)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	service, err := shop.NewService(gateway)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := shophttp.NewShopHandler(shophttp.ShopHandlerConfig{
		CORS:        cfg.CORS,
		PingTimeout: cfg.Database.PingTimeout,
	}, service, db)

	addr := fmt.Sprintf(":%d", cfg.Shop.Port)
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

	slog.Info("starting server", "addr", addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
