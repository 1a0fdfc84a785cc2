package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	intconfig "backoffice/internal/config"
	router "backoffice/internal/http"
	"backoffice/internal/http/handlers"
	"backoffice/internal/repositories"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if addr != "" {
				env.AppAddr = addr
			}
			if env.GinMode != "" {
				gin.SetMode(env.GinMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, env)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides APP_ADDR)")
	return cmd
}

func serve(ctx context.Context, env intconfig.Env) error {
	log := utils.Logger()

	db, err := intconfig.ConnectAuditDB(env.AuditDSN)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	audit := repositories.AuditRepository{DB: db}
	if audit.Enabled() {
		schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := audit.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			return err
		}
	} else {
		log.Info("AUDIT_DSN not set, mutations are only logged")
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, handlers.Deps{Audit: audit}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", env.AppAddr).Info("back-office gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
