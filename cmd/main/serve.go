package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"tasktracker/internal/api"
	"tasktracker/internal/api/handlers"
	"tasktracker/internal/logger"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			h := handlers.NewHandler(a.registration, a.users, a.categories, a.tasks)
			srv := &http.Server{
				Addr:         a.conf.HTTP.Addr,
				Handler:      api.NewRouter(h),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.L().Infow("API server starting", "addr", srv.Addr)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.L().Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.L().Info("Server stopped")
			return nil
		},
	}
}
