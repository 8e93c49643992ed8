package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 300, int(cfg.Redis.TTL().Seconds()))
	assert.NoError(t, cfg.Validate(), "en development el secreto puede faltar")
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("HTTP_PORT", "9090")
	v.Set("JWT_SECRET", "s3cr3t")
	v.Set("DB_PASSWORD", "p@ss:word")
	v.Set("LOGIN_BURST", "no-es-numero")

	cfg := fromViper(v)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5, cfg.RateLimit.LoginBurst, "valor no numérico cae al default")
	assert.Contains(t, cfg.DB.DSN(), "p%40ss%3Aword")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := fromViper(viper.New())
	cfg.App.Env = "production"
	cfg.Store.Driver = "mysql"
	cfg.Bootstrap.AdminUsername = "admin"
	cfg.Bootstrap.AdminPassword = "corta"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "BOOTSTRAP_ADMIN_PASSWORD")
}

func TestConnectionString_PrefersURL(t *testing.T) {
	c := DBConfig{DatabaseURL: "postgres://x@y/z", Host: "h"}
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
