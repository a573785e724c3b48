package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"myaccount/internal/domain"
)

// OptionsService serves the five lookup lists behind the account selects.
// Reference data changes rarely, so every list is read through the cache with
// a TTL; the supplier is only hit on a miss.
type OptionsService struct {
	supplier domain.SupplierClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewOptionsService(supplier domain.SupplierClient, cache domain.Cache, ttl time.Duration) *OptionsService {
	return &OptionsService{supplier: supplier, cache: cache, cacheTTL: ttl}
}

func (s *OptionsService) Currencies(ctx context.Context) ([]domain.Option, error) {
	return s.cached(ctx, "options:currencies", func(ctx context.Context) ([]domain.Option, error) {
		rows, err := s.supplier.GetCurrencies(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Option, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.Option{Value: r.CurrencyCode, Label: r.DisplayName})
		}
		return out, nil
	})
}

func (s *OptionsService) Languages(ctx context.Context) ([]domain.Option, error) {
	return s.cached(ctx, "options:languages", func(ctx context.Context) ([]domain.Option, error) {
		rows, err := s.supplier.GetLanguages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Option, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.Option{Value: r.Language, Label: r.LanguageName})
		}
		return out, nil
	})
}

func (s *OptionsService) Countries(ctx context.Context) ([]domain.Option, error) {
	return s.cached(ctx, "options:countries", func(ctx context.Context) ([]domain.Option, error) {
		rows, err := s.supplier.GetCountries(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Option, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.Option{Value: r.Code, Label: r.Name})
		}
		return out, nil
	})
}

// States returns the state list for one country; codes are upper-cased the
// way the address form expects them.
func (s *OptionsService) States(ctx context.Context, countryCode string) ([]domain.Option, error) {
	key := fmt.Sprintf("options:states:%s", strings.ToUpper(countryCode))
	return s.cached(ctx, key, func(ctx context.Context) ([]domain.Option, error) {
		rows, err := s.supplier.GetStatesByCountry(ctx, countryCode)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Option, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.Option{Value: strings.ToUpper(r.Code), Label: r.Name})
		}
		return out, nil
	})
}

func (s *OptionsService) PMSList(ctx context.Context) ([]domain.Option, error) {
	return s.cached(ctx, "options:pms", func(ctx context.Context) ([]domain.Option, error) {
		rows, err := s.supplier.GetPMSList(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Option, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.Option{Value: strconv.FormatInt(r.ID, 10), Label: r.Name})
		}
		return out, nil
	})
}

// LoadAll fetches all five lists concurrently. The forms render only once
// every list is in, so one failure fails the aggregate.
func (s *OptionsService) LoadAll(ctx context.Context, countryCode string) (domain.Options, error) {
	var out domain.Options
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Currencies, err = s.Currencies(ctx); return })
	g.Go(func() (err error) { out.Languages, err = s.Languages(ctx); return })
	g.Go(func() (err error) { out.Countries, err = s.Countries(ctx); return })
	g.Go(func() (err error) { out.States, err = s.States(ctx, countryCode); return })
	g.Go(func() (err error) { out.PMSList, err = s.PMSList(ctx); return })
	if err := g.Wait(); err != nil {
		return domain.Options{}, err
	}
	return out, nil
}

func (s *OptionsService) cached(ctx context.Context, key string, fetch func(context.Context) ([]domain.Option, error)) ([]domain.Option, error) {
	var opts []domain.Option
	if ok, _ := s.cache.Get(ctx, key, &opts); ok {
		return opts, nil
	}
	opts, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, opts, int(s.cacheTTL.Seconds()))
	return opts, nil
}
