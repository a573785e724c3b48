package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	SupplierBase string
	SupplierJWT  string
	UserID       string
	UserName     string
	PMSID        string
	SupplierRPS  int

	DefaultCallingCode string
	DefaultCountry     string

	CacheTTL        time.Duration
	Workers         int
	WarmupCountries []string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		SupplierBase: env("SUPPLIER_API_URL", "https://suppliers-api.dev.example.com/api"),
		SupplierJWT:  env("SUPPLIER_JWT", ""),
		UserID:       env("SUPPLIER_USER_ID", ""),
		UserName:     env("SUPPLIER_USER_NAME", ""),
		PMSID:        env("SUPPLIER_PMS_ID", ""),
		SupplierRPS:  atoi("SUPPLIER_RPS", 5),

		DefaultCallingCode: env("DEFAULT_CALLING_CODE", "+1"),
		DefaultCountry:     env("DEFAULT_COUNTRY", "US"),

		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		Workers:  atoi("WARMUP_WORKERS", 4),
	}
	if v := os.Getenv("WARMUP_COUNTRIES"); v != "" {
		c.WarmupCountries = splitCSV(v)
	} else {
		c.WarmupCountries = []string{"US", "CA"}
	}
	if c.SupplierJWT == "" {
		log.Warn().Msg("SUPPLIER_JWT is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
