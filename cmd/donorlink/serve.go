package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donorlink/internal/auth"
	"donorlink/internal/db"
	"donorlink/internal/metrics"
	"donorlink/internal/server"
	"donorlink/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(config)

	if cCtx.Bool("migrate") {
		if err := db.MigrateUp(config.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	accountRepo := store.NewAccountRepository(pool)
	profileRepo := store.NewProfileRepository(pool)
	requestRepo := store.NewDonationRequestRepository(pool)

	passwords, err := auth.NewPasswordHasher(config.BcryptCost)
	if err != nil {
		return err
	}

	signingKey, err := base64.StdEncoding.DecodeString(config.SessionSigningKey)
	if err != nil {
		return fmt.Errorf("decode session signing key: %w", err)
	}

	sessions, err := auth.NewSessionManager(signingKey, time.Duration(config.SessionMaxAgeSec)*time.Second)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	srv, err := server.New(
		config,
		logger,
		accountRepo,
		profileRepo,
		requestRepo,
		passwords,
		sessions,
		collector,
		registry,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
