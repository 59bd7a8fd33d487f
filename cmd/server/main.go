// Command server wires configuration, storage, services and the HTTP router,
// then runs the server until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	authhandler "github.com/willian-mayer/listify/internal/auth/handler"
	authservice "github.com/willian-mayer/listify/internal/auth/service"
	userstore "github.com/willian-mayer/listify/internal/auth/store/user"
	jwttoken "github.com/willian-mayer/listify/internal/jwt_token"
	listhandler "github.com/willian-mayer/listify/internal/list/handler"
	listservice "github.com/willian-mayer/listify/internal/list/service"
	liststore "github.com/willian-mayer/listify/internal/list/store"
	"github.com/willian-mayer/listify/internal/platform/config"
	"github.com/willian-mayer/listify/internal/platform/httpserver"
	"github.com/willian-mayer/listify/internal/platform/logger"
	"github.com/willian-mayer/listify/internal/platform/metrics"
	"github.com/willian-mayer/listify/internal/platform/postgres"
	"github.com/willian-mayer/listify/internal/platform/redis"
	sharehandler "github.com/willian-mayer/listify/internal/share/handler"
	shareservice "github.com/willian-mayer/listify/internal/share/service"
	sharestore "github.com/willian-mayer/listify/internal/share/store"
	httptransport "github.com/willian-mayer/listify/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	m := metrics.New()
	txRunner := postgres.NewTxRunner(db)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "listify")

	users := userstore.NewPostgres(db)
	authSvc := authservice.New(users, tokens, cfg.AccessTokenTTL,
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
	)

	lists := liststore.NewPostgres(db)
	listSvc := listservice.New(lists, lists,
		listservice.WithLogger(log),
		listservice.WithMetrics(m),
		listservice.WithTxRunner(txRunner),
	)

	shareOpts := []shareservice.Option{
		shareservice.WithLogger(log),
		shareservice.WithMetrics(m),
		shareservice.WithTxRunner(txRunner),
	}
	if cache != nil {
		shareOpts = append(shareOpts,
			shareservice.WithResolveCache(sharestore.NewRedisResolveCache(cache.Client, sharestore.WithLogger(log))))
	}
	shareSvc := shareservice.New(lists, cfg.ShareBaseURL, shareOpts...)

	healthChecks := map[string]httptransport.HealthCheck{
		"postgres": db.PingContext,
	}
	if cache != nil {
		healthChecks["redis"] = cache.Health
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Auth:         authhandler.New(authSvc, log),
		Lists:        listhandler.New(listSvc, log),
		Share:        sharehandler.New(shareSvc, log),
		Verifier:     tokens,
		Resolver:     authSvc,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return httpserver.Shutdown(srv)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
