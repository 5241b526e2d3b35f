package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"medicare-backend/config"
	"medicare-backend/routes"
	"medicare-backend/services"
	"medicare-backend/shared/security"
	"medicare-backend/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := config.ConnectDB(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if a.cfg.Database.AutoMigrate {
		if err := config.MigrateUp(db); err != nil {
			return err
		}
		a.logger.Info().Msg("migrations applied")
	}

	gin.SetMode(a.cfg.Server.GinMode)
	router := routes.NewRouter(routes.Deps{
		Users:        store.NewUserStore(db),
		Profiles:     store.NewPatientProfileStore(db),
		Appointments: store.NewAppointmentStore(db),
		DB:           db,
		Tokens:       security.NewTokenManager(a.cfg.JWT.Secret, a.cfg.JWT.AccessTTL, a.cfg.JWT.RefreshTTL),
		Passwords:    services.Passwords{},
		Logger:       a.logger,
		CORSOrigins:  a.cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info().Str("port", a.cfg.Server.Port).Msg("MediCare API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		a.logger.Info().Str("signal", sig.String()).Msg("shutting down MediCare API")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("MediCare API forced to shutdown")
		return err
	}

	a.logger.Info().Msg("MediCare API exited")
	return nil
}
