package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "myaccount/internal/adapters/http_server"
	"myaccount/internal/adapters/observability"
	redisad "myaccount/internal/adapters/redis"
	"myaccount/internal/adapters/session"
	"myaccount/internal/adapters/supplier"
	"myaccount/internal/app"
	"myaccount/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, session runs memory-only")
			cache = nil
		} else {
			log.Info().Msg("redis connection ok")
		}
		cancel()
	}

	sess := newSession(cfg, cache)

	client, err := supplier.New(cfg.SupplierBase, sess, cfg.SupplierRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize supplier client")
	}

	notify := observability.LogNotifier{}
	tr := app.NewTransformer(cfg.DefaultCallingCode)
	schema := app.NewSchemaValidator()

	form := app.NewFormService(client, tr, schema, notify)
	policies := app.NewPolicyService(client, notify)
	contacts := app.NewContactsService(client, notify)

	var opts *app.OptionsService
	if cache != nil {
		opts = app.NewOptionsService(client, cache, cfg.CacheTTL)
	} else {
		opts = app.NewOptionsService(client, nopCache{}, cfg.CacheTTL)
	}

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Form:     form,
		Policies: policies,
		Options:  opts,
		Contacts: contacts,
		Supplier: client,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("account API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func newSession(cfg shared.Config, cache *redisad.Cache) *session.Store {
	u := session.User{
		UserID:   cfg.UserID,
		UserName: cfg.UserName,
		Token:    cfg.SupplierJWT,
		PMSID:    cfg.PMSID,
	}
	if cache == nil {
		return session.NewStore(nil, u)
	}
	return session.NewStore(cache, u)
}

// nopCache keeps the options service usable when redis is down.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }
