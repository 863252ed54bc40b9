package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/api"
)

func serveCmd(app *App) *cobra.Command {
	var (
		port      int
		staticDir string
		origins   []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = app.cfg.Server.Port
			}
			return app.serve(port, api.RouterOptions{AllowedOrigins: origins, StaticDir: staticDir})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	cmd.Flags().StringVar(&staticDir, "static", "./web/dist", "Directory of a built frontend")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	return cmd
}

func (app *App) serve(port int, opts api.RouterOptions) error {
	handler, err := api.NewHandler(app.ctx, app.service, app.params, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load shifts: %w", err)
	}
	app.logger.Info(handler.State.Snapshot().Status)

	metrics, err := api.NewMetrics(handler.State)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	opts.Metrics = metrics

	watcher := api.NewPeriodWatcher(handler)
	watcher.Start()
	defer watcher.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      api.NewRouter(handler, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("server starting", zap.String("url", fmt.Sprintf("http://localhost:%d", port)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	app.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	app.logger.Info("server stopped")
	return nil
}
