package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/rest"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start an HTTP server exposing /resolve, /queries, /resolutions, /health and /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			if port > 0 {
				a.cfg.HTTP.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides http.port)")
	return cmd
}

// serve runs the HTTP server until ctx is canceled, then drains it.
func serve(ctx context.Context, a *app) error {
	metrics.Register()

	if err := a.openJournal(ctx, true); err != nil {
		return err
	}

	opts := []rest.Option{
		rest.WithLogger(a.logger.Named("http")),
		rest.WithResolveTimeout(a.resolveTimeout()),
	}
	if a.journalStore != nil {
		opts = append(opts, rest.WithJournalReader(a.journalStore))
	}
	handler := rest.NewHandler(a.resolver(ctx), opts...)

	hc := a.cfg.HTTP
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", hc.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(hc.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(hc.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(hc.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("catalog", a.cfg.Catalog.Driver),
			zap.String("journal", a.cfg.Journal.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(hc.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
