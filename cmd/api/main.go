package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-feeding/internal/adapters/auth/jwt"
	"smart-feeding/internal/adapters/backup"
	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/adapters/storage/memory"
	"smart-feeding/internal/adapters/storage/postgres"
	"smart-feeding/internal/adapters/storage/sqlite"
	"smart-feeding/internal/config"
	"smart-feeding/internal/domain/admin"
	"smart-feeding/internal/platform/logger"
	"smart-feeding/internal/platform/metrics"
	"smart-feeding/internal/platform/scheduler"
	"smart-feeding/internal/router"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		logger.NewFromEnv().Error("fatal", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, db, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := router.Options{
		Logger:             log,
		Backend:            backend,
		StorageName:        cfg.StorageDriver,
		Version:            version,
		DevAuth:            cfg.DevAuthEnabled(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		IsAdminEmail:       cfg.IsAdminEmail,
	}

	if cfg.JWTSecret != "" {
		signer, err := jwt.NewSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
		if err != nil {
			return err
		}
		opts.AuthVerifier = signer
		opts.TokenIssuer = signer
	} else {
		log.Warn("JWT_SECRET not set; only dev auth headers are accepted", nil)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts.Metrics = m
	}

	sink, err := backupSink(ctx, cfg)
	if err != nil {
		return err
	}
	opts.BackupSink = sink

	svcs := router.NewServices(opts)

	sched := scheduler.New(log)
	if cfg.BackupSchedule != "" {
		if err := sched.AddJob(cfg.BackupSchedule, admin.NewBackupJob(svcs.Admin, m)); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Mount(opts, svcs),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "storage": cfg.StorageDriver, "version": version})
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

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg *config.Config) (docstore.Backend, *sql.DB, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, db, err := postgres.OpenStore(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	case config.DriverSQLite:
		store, db, err := sqlite.OpenStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	default:
		return memory.NewStore(), nil, nil
	}
}

// backupSink: S3 si hay bucket, si no directorio local.
func backupSink(ctx context.Context, cfg *config.Config) (admin.Sink, error) {
	if cfg.BackupS3Bucket != "" {
		return backup.NewS3(ctx, cfg.AWSRegion, cfg.BackupS3Bucket, cfg.BackupS3Prefix)
	}
	if cfg.BackupDir == "" {
		return nil, nil
	}
	return backup.NewDir(cfg.BackupDir)
}
