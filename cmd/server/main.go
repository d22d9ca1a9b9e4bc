// Command server runs the PIDS licensing service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appservice "github.com/embedpro/pids-licensing/internal/application/service"
	"github.com/embedpro/pids-licensing/internal/config"
	tokencrypto "github.com/embedpro/pids-licensing/internal/infrastructure/crypto"
	"github.com/embedpro/pids-licensing/internal/infrastructure/guard"
	"github.com/embedpro/pids-licensing/internal/infrastructure/monitoring"
	"github.com/embedpro/pids-licensing/internal/infrastructure/notification"
	persistenceredis "github.com/embedpro/pids-licensing/internal/infrastructure/persistence/redis"
	blacklistredis "github.com/embedpro/pids-licensing/internal/infrastructure/redis"
	"github.com/embedpro/pids-licensing/internal/infrastructure/vault"
	httpiface "github.com/embedpro/pids-licensing/internal/interfaces/http"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
	"github.com/embedpro/pids-licensing/pkg/seal"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := monitoring.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	metrics := monitoring.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := persistenceredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	credentialStore, err := vault.New(cfg.Vault, cfg.Admin, log)
	if err != nil {
		return err
	}

	var mailer notification.Mailer
	if cfg.SMTP.Enabled() {
		mailer = notification.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = notification.NewLogMailer(log)
	}
	dispatcher := notification.NewDispatcher(mailer, log,
		metrics.NotificationsDelivered, metrics.NotificationsDeadLetter)
	dispatcher.Start()

	licenseService := appservice.NewLicenseAppService(
		persistenceredis.NewLicenseRepo(redisClient),
		guard.New(constants.DuplicateWindow),
		dispatcher,
		seal.New(),
		metrics,
		log,
	)
	authService := appservice.NewAuthAppService(
		credentialStore,
		tokencrypto.NewTokenManager(cfg.JWT.Secret),
		blacklistredis.NewTokenBlacklist(redisClient),
		log,
	)

	router := httpiface.NewRouter(httpiface.RouterDeps{
		Config:   cfg,
		Log:      log,
		Metrics:  metrics,
		Licenses: licenseService,
		Auth:     authService,
		Redis:    redisClient,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", logger.String("addr", cfg.Server.Addr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "http shutdown", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "dispatcher shutdown", err)
	}
	return nil
}
