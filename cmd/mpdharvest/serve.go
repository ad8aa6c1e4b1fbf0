package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mpdharvest/internal/api"
	"mpdharvest/internal/cache"
	"mpdharvest/internal/config"
	"mpdharvest/internal/logger"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve manifest resolution over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			responses := cache.New(a.log, a.cfg.Serve.CacheTTL)
			responses.Start()
			defer responses.Stop()

			server := &http.Server{
				Addr:              a.cfg.Serve.Listen,
				Handler:           api.New(a.newClient(), responses, logger.With(a.log, "component", "api")),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Infof("Server starting on %s", a.cfg.Serve.Listen)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					a.log.Errorf("Could not listen on %s: %v", a.cfg.Serve.Listen, err)
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}
			a.log.Infof("Server is shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				a.log.Errorf("Server shutdown failed: %v", err)
				return err
			}

			a.log.Infof("Server exited gracefully")
			return nil
		},
	}

	cmd.Flags().StringP("listen", "l", ":8080", "HTTP listen address")
	lo.Must0(a.v.BindPFlag(config.ServeListen, cmd.Flags().Lookup("listen")))
	return cmd
}
