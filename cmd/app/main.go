package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"iptv-reseller-store/internal/config"
	"iptv-reseller-store/internal/infra/auth"
	pg "iptv-reseller-store/internal/infra/db/postgres"
	"iptv-reseller-store/internal/infra/logging"
	"iptv-reseller-store/internal/infra/metrics"
	red "iptv-reseller-store/internal/infra/redis"
	"iptv-reseller-store/internal/infra/sched"
	"iptv-reseller-store/internal/infra/web"
	"iptv-reseller-store/internal/migrate"
	"iptv-reseller-store/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose tracing)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Migrations ----
	if err := migrate.Up(ctx, cfg.Database.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	snapshots := red.NewSessionStore(redisClient, cfg.Auth.SessionTTL)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Auth ----
	credStore := auth.NewCredentialStore(pool)
	gateway := auth.NewGateway(credStore, redisClient, cfg.Auth, logger)
	defer gateway.Close()

	authStore := usecase.NewAuthStore(gateway, userRepo, snapshots, cfg.Auth.AdminEmail, cfg.Auth.MinPasswordLen, logger)
	authStore.Init(ctx)
	defer authStore.Close()

	// ---- Catalog ----
	catalog := usecase.NewCatalogStore(userRepo, planRepo, codeRepo, purchaseRepo, txManager, authStore, logger)
	reloader := sched.NewReloader(catalog.LoadAll, cfg.Store.ReloadDebounce, logger)
	catalog.BindReloader(reloader)
	go reloader.Start(ctx)
	catalog.LoadAll(ctx)

	// ---- HTTP ----
	srv := web.NewServer(authStore, catalog, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
