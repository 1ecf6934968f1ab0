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

	"github.com/Akshith040/EcoScan1/internal/auth"
	"github.com/Akshith040/EcoScan1/internal/catalog"
	"github.com/Akshith040/EcoScan1/internal/db"
	"github.com/Akshith040/EcoScan1/internal/photostore/local"
	"github.com/Akshith040/EcoScan1/internal/service"
	"github.com/Akshith040/EcoScan1/internal/store"
	"github.com/Akshith040/EcoScan1/internal/web"
	"github.com/Akshith040/EcoScan1/internal/web/templates"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			}()

			photos, err := local.New(cfg.PhotoPath)
			if err != nil {
				return fmt.Errorf("failed to initialize photo store: %w", err)
			}
			cat, err := catalog.Load()
			if err != nil {
				return err
			}

			p, err := newPipeline(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer p.release()

			secret := []byte(cfg.SessionSecret)
			if len(secret) == 0 {
				if secret, err = auth.RandomSecret(); err != nil {
					return err
				}
				logger.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
			}

			svc := service.NewEcoSnapService(
				store.NewUserStore(database),
				store.NewHistoryStore(database),
				p.classifier,
				p.generator,
				photos,
				logger,
			)
			server := web.NewServer(svc, auth.NewSessions(secret, cfg.SessionTTL), cat, templates.FS, logger)
			httpServer := server.NewHTTPServer(cfg.ListenAddr)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", cfg.ListenAddr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-runCtx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $LISTEN_ADDR or :8080)")
	return cmd
}
