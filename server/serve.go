package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"arogyam-go/internal/config"
	"arogyam-go/internal/database"
	"arogyam-go/internal/lazyload"
	"arogyam-go/internal/models"
	"arogyam-go/internal/performance"
	"arogyam-go/internal/preferences"
	"arogyam-go/internal/repository"
	"arogyam-go/internal/router"
	"arogyam-go/internal/services"
	"arogyam-go/internal/storage"
	"arogyam-go/internal/telemetry"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(conf.Database, log)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, log); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(conf.Storage.Path), 0755); err != nil {
				return err
			}
			local, err := storage.NewLocal(conf.Storage.Path)
			if err != nil {
				return err
			}
			defer local.Close()

			clk := clock.New()
			consultations := repository.NewConsultations(db)
			admins := repository.NewAdmins(db)

			catalogPath := filepath.Join(projectRoot, conf.Booking.CatalogPath)
			catalog := lazyload.New("consultation catalog", func(ctx context.Context) (*models.Catalog, error) {
				return models.LoadCatalog(catalogPath)
			}, lazyload.Options{Priority: lazyload.PriorityHigh, Clock: clk, Log: log})
			defer catalog.Stop()

			scheduler := services.NewScheduler(log, clk, consultations, admins, services.NewEmailService(log, os.Stdout))
			scheduler.Start()
			defer scheduler.Stop()

			r := router.Setup(router.Deps{
				Log:           log,
				Config:        config.Get,
				Clock:         clk,
				Consultations: consultations,
				Patients:      repository.NewPatients(db),
				Prescriptions: repository.NewPrescriptions(db),
				Admins:        admins,
				Metrics:       repository.NewMetrics(db),
				Stats:         repository.NewStats(db),
				Catalog:       catalog,
				Prober:        performance.NewProber(log),
				Hub:           telemetry.NewHub(telemetry.DefaultBuffer),
				Preferences:   preferences.NewStore(local, log),
			})

			srv := &http.Server{Addr: ":" + conf.Server.Port, Handler: r}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("Server listening on http://localhost:" + conf.Server.Port)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					log.Error("Failed to run server", zap.Error(err))
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(conf.Database, log)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}
