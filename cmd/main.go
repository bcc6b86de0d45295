package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tirzah-studio/site-api/config"
	"github.com/tirzah-studio/site-api/domain/auth"
	"github.com/tirzah-studio/site-api/domain/client"
	"github.com/tirzah-studio/site-api/domain/contact"
	"github.com/tirzah-studio/site-api/domain/health"
	"github.com/tirzah-studio/site-api/domain/portfolio"
	"github.com/tirzah-studio/site-api/domain/testimonial"
	"github.com/tirzah-studio/site-api/middleware"
	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/mailer"
	"github.com/tirzah-studio/site-api/pkg/token"
	"github.com/tirzah-studio/site-api/pkg/upload"
	"github.com/tirzah-studio/site-api/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: site-api [server|migrate]")
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       logger.Level(cfg.LogLevel),
		Environment: cfg.AppEnv,
		Version:     cfg.ServiceVersion,
		FilePath:    cfg.LogFile,
	})
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "server":
		err = runServer(ctx, cfg, log)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Command failed", err, logger.String("command", os.Args[1]))
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.Migrate(db); err != nil {
		return err
	}
	log.Info("Migrations applied")
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.Migrate(db); err != nil {
		return err
	}

	rdb, err := config.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn("REDIS_URL not set, using in-process rate limiting")
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	sender, err := mailer.NewSender(ctx, cfg)
	if err != nil {
		return err
	}
	dispatcher := mailer.NewDispatcher(sender, mailer.DispatcherConfig{
		From:        cfg.MailFrom,
		Recipient:   cfg.RecipientEmail,
		Brand:       cfg.BrandName,
		FrontendURL: cfg.FrontendURL,
		Timeout:     cfg.MailTimeout,
	}, log)

	authStore := auth.NewStore(db)
	authSvc := auth.NewService(authStore, token.NewIssuer(cfg.JWTSecret), dispatcher, auth.Config{
		SessionTTL:        cfg.SessionTTL,
		ResetTTL:          cfg.ResetTokenTTL,
		MaxAttempts:       cfg.LoginMaxAttempts,
		BlockDuration:     cfg.LoginBlockDuration,
		AllowRegistration: cfg.AllowRegistration,
	}, log)

	files := upload.NewStorage(cfg.UploadsDir)

	e, err := newEcho(cfg, log)
	if err != nil {
		return err
	}
	routes.RegisterRoutes(e, routes.Handlers{
		Auth:         auth.NewHandler(authSvc),
		Portfolio:    portfolio.NewHandler(portfolio.NewService(portfolio.NewStore(db), files, log)),
		Clients:      client.NewHandler(client.NewService(client.NewStore(db), files, log)),
		Testimonial:  testimonial.NewHandler(testimonial.NewService(testimonial.NewStore(db), files, log)),
		Contact:      contact.NewHandler(contact.NewService(dispatcher, log)),
		Health:       health.NewHandler(cfg.ServiceVersion, healthChecks(db, rdb)),
		RequireAdmin: middleware.RequireAdmin(authSvc),
		AuthLimit:    rateLimit(cfg, rdb, log, "auth"),
		ContactLimit: rateLimit(cfg, rdb, log, "contact"),
	})

	scheduler := cron.New()
	if _, err := auth.ScheduleRetention(ctx, scheduler, authStore, log); err != nil {
		return fmt.Errorf("schedule retention: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", logger.String("addr", cfg.Addr()), logger.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

func newEcho(cfg *config.Config, log logger.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(log)

	ipExtractor, err := middleware.ClientIP(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	e.IPExtractor = ipExtractor

	e.Use(logger.RecoveryMiddleware(log))
	e.Use(logger.RequestLoggerMiddleware(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentLength, echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}

	e.Static(upload.PublicPrefix, cfg.UploadsDir)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e, nil
}

func rateLimit(cfg *config.Config, rdb *redis.Client, log logger.Logger, group string) echo.MiddlewareFunc {
	return middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		Group:         group,
		MaxRequests:   cfg.RateLimitRequests,
		Window:        cfg.RateLimitWindow,
		BlockDuration: cfg.RateLimitBlock,
		Redis:         rdb,
		Logger:        log,
	})
}

func healthChecks(db *sqlx.DB, rdb *redis.Client) map[string]health.PingFunc {
	checks := map[string]health.PingFunc{"database": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
