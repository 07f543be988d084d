package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/basket-activity/api/controllers"
	"github.com/angelmondragon/basket-activity/api/routes"
	"github.com/angelmondragon/basket-activity/internal/baskets"
	"github.com/angelmondragon/basket-activity/internal/products"
	"github.com/angelmondragon/basket-activity/internal/removeditems"
	"github.com/angelmondragon/basket-activity/internal/users"
	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/db"
	"github.com/angelmondragon/basket-activity/pkg/logger"
	"github.com/angelmondragon/basket-activity/pkg/metrics"
	"github.com/angelmondragon/basket-activity/pkg/migrate"
	"github.com/angelmondragon/basket-activity/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	basketMetrics := metrics.NewBasketMetrics(registry)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	basketService, err := baskets.NewService(baskets.NewRepository(dbClient.DB()), productService, cfg.Basket, basketMetrics, logg)
	if err != nil {
		return err
	}
	reportService, err := removeditems.NewService(removeditems.NewRepository(dbClient.DB()), cfg.Report, basketMetrics, logg)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Users:        userService,
			Products:     productService,
			Baskets:      basketService,
			RemovedItems: reportService,
			RateLimiter:  redisClient,
			Readiness: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Gatherer:    registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
