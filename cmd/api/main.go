package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enquiry-platform/internal/audit"
	"enquiry-platform/internal/auth"
	"enquiry-platform/internal/config"
	"enquiry-platform/internal/enquiry"
	"enquiry-platform/internal/httpapi"
	"enquiry-platform/internal/notify"
	"enquiry-platform/internal/payment"
	"enquiry-platform/internal/reporting"
	"enquiry-platform/internal/users"
	"enquiry-platform/pkg/logger"
	"enquiry-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Without redis the process-local mutex in the generator is the only
	// serialization; fine for a single replica.
	var mint enquiry.MintLock
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis open failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		mint = &utils.RedisMintLock{
			Client:   rdb,
			TTL:      10 * time.Second,
			NewToken: uuid.NewString,
		}
		log.Info("redis mint lock enabled", "addr", cfg.RedisAddr())
	}

	authMgr, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth manager init failed", "err", err)
		os.Exit(1)
	}

	auditRepo := audit.NewPostgresRepo(db)
	enqStore := enquiry.NewPostgresStore(db)
	userStore := users.NewPostgresStore(db)
	payStore := payment.NewPostgresStore(db)

	var notifier enquiry.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTPNotifier(cfg.SMTP, userStore)
		log.Info("smtp notifications enabled", "addr", cfg.SMTPAddr())
	} else {
		notifier = notify.NewLogNotifier()
	}

	h := &httpapi.Handlers{
		Auth:      authMgr,
		Users:     users.NewService(userStore),
		Enquiries: enquiry.NewService(enqStore, enquiry.NewGenerator(enqStore), notifier, mint),
		Payments:  payment.NewService(payStore, enqStore),
		Reports:   reporting.NewService(enqStore),
		Audit:     audit.NewService(auditRepo),
	}

	router := httpapi.Router(h, log, func(ctx context.Context) error {
		return utils.HealthCheck(ctx, db, 2*time.Second)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", cfg.HTTPAddr(), "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
