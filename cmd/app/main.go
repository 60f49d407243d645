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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teachshare/internal/config"
	"teachshare/internal/infra/api"
	pg "teachshare/internal/infra/db/postgres"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"
	red "teachshare/internal/infra/redis"
	"teachshare/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (verbose errors, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional: without it, rate limiting is off) ----
	var limiter api.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; request throttling disabled")
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	codeRepo := pg.NewActivationCodeRepo(pool)
	resourceRepo := pg.NewResourceRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Auth ----
	tokens := api.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.SecureCookie, cfg.Auth.TokenTTL)

	// ---- Use cases ----
	authUC := usecase.NewAuthUseCase(userRepo, tokens, logger)
	membershipUC := usecase.NewMembershipUseCase(userRepo, codeRepo, txManager, logger)
	codeAdminUC := usecase.NewCodeAdminUseCase(codeRepo, logger)
	userAdminUC := usecase.NewUserAdminUseCase(userRepo, logger)
	resourceUC := usecase.NewResourceUseCase(resourceRepo, logger)

	// ---- HTTP ----
	metrics.MustRegister()

	srv := api.NewServer(
		authUC, membershipUC, codeAdminUC, userAdminUC, resourceUC,
		userRepo, tokens, limiter,
		api.Limits{
			LoginPerMinute:  cfg.RateLimit.LoginPerMinute,
			RedeemPerMinute: cfg.RateLimit.RedeemPerMinute,
		},
		logger, cfg.Runtime.Dev,
	)

	r := chi.NewRouter()
	r.Use(api.TraceID(), api.RequestLog(logger), api.Recover(logger), api.Timeout(cfg.Server.RequestTimeout))
	srv.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
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
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
