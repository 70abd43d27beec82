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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mynd-backend/internal/db"
	"mynd-backend/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := db.Migrate(ctx, a.db); err != nil {
			return err
		}

		srv := &http.Server{
			Addr: a.cfg.HTTPAddr,
			Handler: server.Handler(server.Deps{
				DB:          a.db,
				Log:         a.log,
				JWTSecret:   []byte(a.cfg.JWTSecret),
				TokenTTL:    a.cfg.TokenTTL,
				CORSOrigins: a.cfg.CORSOrigins,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.log.Info("api server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.log.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}
