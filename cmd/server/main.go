package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/config"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/db"
	api "github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/http"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/jobs"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.WithError(err).Fatal("failed to connect db")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	repository := repo.New(pool)
	svc := service.New(repository, authManager)
	svc.TokenTTL = cfg.TokenTTL
	svc.InviteTTL = cfg.InviteTTL

	scheduler := jobs.NewScheduler(repository)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := &api.API{
		Repo:    repository,
		Service: svc,
		Auth:    authManager,
		Origins: splitOrigins(cfg.CORSOrigin),
		Timeout: cfg.Timeout,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
