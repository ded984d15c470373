package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookgalaxy")
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.JWT().TTL)
	require.Equal(t, 5, cfg.DiscountPolicy().BulkLowQty)
	require.Equal(t, "10", cfg.DiscountPolicy().LoyaltyPercent.String())
	require.False(t, cfg.AutoMigrate)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BULK_LOW_QTY", "five")
	t.Setenv("LOYALTY_PERCENT", "abc")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL is required")
	require.Contains(t, err.Error(), "BULK_LOW_QTY must be an integer")
	require.Contains(t, err.Error(), "LOYALTY_PERCENT must be a number")
}

func TestLoad_RejectsBadTiers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookgalaxy")
	t.Setenv("BULK_LOW_PERCENT", "150")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ProdNeedsSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookgalaxy")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")
}
