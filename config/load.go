package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Load reads the environment, after merging an optional .env file. Variables
// already set in the process win over the file.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env not loaded", "err", err)
	}

	var errs []string
	note := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	cfg := App{
		Port:         getenv("APP_PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Env:          getenv("APP_ENV", "dev"),
		JWTSecret:    getenv("JWT_SECRET", "local_dev_secret"),
		JWTIssuer:    getenv("JWT_ISSUER", "bookgalaxy"),
		JWTAudience:  os.Getenv("JWT_AUDIENCE"),
		RedisURL:     os.Getenv("REDIS_URL"),
		MailerURL:    os.Getenv("MAILER_URL"),
		MailerAPIKey: os.Getenv("MAILER_API_KEY"),
		MailerFrom:   getenv("MAILER_FROM", "BookGalaxy <no-reply@bookgalaxy.local>"),
	}
	if cfg.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	var err error
	cfg.AutoMigrate, err = boolEnv("AUTO_MIGRATE", false)
	note(err)
	hours, err := intEnv("JWT_TTL_HOURS", 24)
	note(err)
	cfg.JWTTTL = time.Duration(hours) * time.Hour

	cfg.BulkLowQty, err = intEnv("BULK_LOW_QTY", 5)
	note(err)
	cfg.BulkHighQty, err = intEnv("BULK_HIGH_QTY", 10)
	note(err)
	cfg.BulkLowPercent, err = decimalEnv("BULK_LOW_PERCENT", "5")
	note(err)
	cfg.BulkHighPercent, err = decimalEnv("BULK_HIGH_PERCENT", "10")
	note(err)
	cfg.LoyaltyMinOrders, err = intEnv("LOYALTY_MIN_ORDERS", 10)
	note(err)
	cfg.LoyaltyPercent, err = decimalEnv("LOYALTY_PERCENT", "10")
	note(err)

	if len(errs) == 0 {
		note(cfg.DiscountPolicy().Validate())
	}
	if cfg.Env == "prod" && cfg.JWTSecret == "local_dev_secret" {
		errs = append(errs, "JWT_SECRET must be set in prod")
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", k)
	}
	return n, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", k)
	}
	return b, nil
}

func decimalEnv(k, def string) (decimal.Decimal, error) {
	v := getenv(k, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", k)
	}
	return d, nil
}
