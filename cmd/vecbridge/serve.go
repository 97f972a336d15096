package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
	httpserver "github.com/fyrsmithlabs/vecbridge/internal/http"
	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

func newServeCmd(a *app) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, status and Prometheus metrics over HTTP",
		Long: `Serve /health, /api/v1/status and /metrics for the configured vector
store until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, host)
		},
	}
	cmd.Flags().StringVar(&host, "host", "localhost", "listen host")
	return cmd
}

// newServer opens a client on the configured store and builds the HTTP
// server reporting on it. The caller closes the client.
func (a *app) newServer(host string) (*httpserver.Server, *chromemdb.Client, error) {
	if vectorstore.VectorType(a.cfg.VectorStore.Type) != vectorstore.VectorTypeChromem {
		return nil, nil, fmt.Errorf("%w: %q", vectorstore.ErrUnknownVectorType, a.cfg.VectorStore.Type)
	}

	settings := vectorstore.ChromemConfig{URL: a.cfg.VectorStore.URL}
	client, err := chromemdb.NewClient(settings.ToClientParams(), a.logger.Underlying())
	if err != nil {
		return nil, nil, fmt.Errorf("opening vector store: %w", err)
	}

	srv, err := httpserver.NewServer(client, a.logger, &httpserver.Config{
		Host:            host,
		Port:            a.cfg.Server.Port,
		VectorStoreType: a.cfg.VectorStore.Type,
		Version:         version,
		Meter:           a.telemetry.Meter("vecbridge.http"),
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return srv, client, nil
}

// serve runs the HTTP server until ctx is done, then shuts it down within
// the configured timeout.
func (a *app) serve(ctx context.Context, host string) error {
	srv, client, err := a.newServer(host)
	if err != nil {
		return err
	}
	defer client.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutdown requested",
		zap.Duration("timeout", a.cfg.Server.ShutdownTimeout.Duration()))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}
