package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := initApp(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = a.cfg.Server.Listen
	}

	apiServer := server.NewServer(a.book, a.budget, server.Options{
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Gatherer:    prometheus.DefaultGatherer,
	}, a.logger)

	srv := &http.Server{
		Addr:         listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", "listen", listen)
		fmt.Fprintf(os.Stderr, "fuellog API listening on %s\n", listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	a.logger.Info("server stopped")
	return nil
}
