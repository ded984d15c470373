package config

import (
	"time"

	"bookgalaxy/service/discount"
	jwtutil "bookgalaxy/util/jwt"

	"github.com/shopspring/decimal"
)

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	Env         string `env:"APP_ENV" default:"dev"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" default:"false"`

	JWTSecret   string        `env:"JWT_SECRET" default:"local_dev_secret"`
	JWTIssuer   string        `env:"JWT_ISSUER" default:"bookgalaxy"`
	JWTAudience string        `env:"JWT_AUDIENCE"`
	JWTTTL      time.Duration `env:"JWT_TTL_HOURS"`

	RedisURL string `env:"REDIS_URL"`

	MailerURL    string `env:"MAILER_URL"`
	MailerAPIKey string `env:"MAILER_API_KEY"`
	MailerFrom   string `env:"MAILER_FROM" default:"BookGalaxy <no-reply@bookgalaxy.local>"`

	BulkLowQty       int             `env:"BULK_LOW_QTY" default:"5"`
	BulkHighQty      int             `env:"BULK_HIGH_QTY" default:"10"`
	BulkLowPercent   decimal.Decimal `env:"BULK_LOW_PERCENT" default:"5"`
	BulkHighPercent  decimal.Decimal `env:"BULK_HIGH_PERCENT" default:"10"`
	LoyaltyMinOrders int             `env:"LOYALTY_MIN_ORDERS" default:"10"`
	LoyaltyPercent   decimal.Decimal `env:"LOYALTY_PERCENT" default:"10"`
}

func (a App) JWT() jwtutil.Config {
	return jwtutil.Config{
		Secret:   a.JWTSecret,
		Issuer:   a.JWTIssuer,
		Audience: a.JWTAudience,
		TTL:      a.JWTTTL,
	}
}

func (a App) DiscountPolicy() discount.Policy {
	return discount.Policy{
		BulkLowQty:       a.BulkLowQty,
		BulkLowPercent:   a.BulkLowPercent,
		BulkHighQty:      a.BulkHighQty,
		BulkHighPercent:  a.BulkHighPercent,
		LoyaltyMinOrders: a.LoyaltyMinOrders,
		LoyaltyPercent:   a.LoyaltyPercent,
	}
}
