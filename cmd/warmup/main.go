package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"myaccount/internal/adapters/observability"
	redisad "myaccount/internal/adapters/redis"
	"myaccount/internal/adapters/session"
	"myaccount/internal/adapters/supplier"
	"myaccount/internal/app"
	"myaccount/internal/shared"
)

// warmup pre-fills the redis option cache so the first account page load never
// waits on the supplier's reference endpoints.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.SupplierBase).
		Int("workers", cfg.Workers).
		Strs("countries", cfg.WarmupCountries).
		Msg("warmup starting")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	log.Info().Msg("redis ping ok")

	sess := session.NewStore(cache, session.User{
		UserID:   cfg.UserID,
		UserName: cfg.UserName,
		Token:    cfg.SupplierJWT,
		PMSID:    cfg.PMSID,
	})
	client, err := supplier.New(cfg.SupplierBase, sess, cfg.SupplierRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize supplier client")
	}
	opts := app.NewOptionsService(client, cache, cfg.CacheTTL)

	jobs := []struct {
		name string
		run  func(context.Context) error
	}{
		{"currencies", func(ctx context.Context) error { _, err := opts.Currencies(ctx); return err }},
		{"languages", func(ctx context.Context) error { _, err := opts.Languages(ctx); return err }},
		{"countries", func(ctx context.Context) error { _, err := opts.Countries(ctx); return err }},
		{"pms", func(ctx context.Context) error { _, err := opts.PMSList(ctx); return err }},
	}
	for _, cc := range cfg.WarmupCountries {
		cc := cc
		jobs = append(jobs, struct {
			name string
			run  func(context.Context) error
		}{"states:" + cc, func(ctx context.Context) error { _, err := opts.States(ctx, cc); return err }})
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, j := range jobs {
		j := j

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := j.run(ctx); err != nil {
				log.Warn().Str("job", j.name).Err(err).Msg("warmup failed")
				return
			}
			log.Info().Str("job", j.name).Msg("warmup ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("warmup completed")
}
