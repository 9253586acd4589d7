package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.InDelta(t, 10.0, cfg.Pricing.ShippingFee, 1e-9)
	assert.InDelta(t, 0.18, cfg.Pricing.TaxRate, 1e-9)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("SHIPPING_FEE", "4.5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "shop", cfg.Store.DBName)
	assert.InDelta(t, 0.2, cfg.Pricing.TaxRate, 1e-9)
	assert.InDelta(t, 4.5, cfg.Pricing.ShippingFee, 1e-9)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("TAX_RATE", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.Contains(t, err.Error(), "TAX_RATE")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SHOPSPHERE_TEST_KEY", "")
	assert.Equal(t, "fallback", GetEnv("SHOPSPHERE_TEST_KEY", "fallback"))
	t.Setenv("SHOPSPHERE_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("SHOPSPHERE_TEST_KEY", "fallback"))
}
