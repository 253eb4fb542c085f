package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.Inventory.StorageDriver)
	assert.Equal(t, 3*time.Second, cfg.Inventory.LockTimeout)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("INVENTORY_STORAGE", "Memory")
	v.Set("INVENTORY_LOCK_TIMEOUT", "750")
	v.Set("INVENTORY_STATS_TTL", "1m")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_FORCE_IPV4", "true")
	v.Set("RATE_LIMIT_RPS", "2.5")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.Inventory.StorageDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.Inventory.LockTimeout)
	assert.Equal(t, time.Minute, cfg.Inventory.StatsTTL)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.ForceIPv4)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimitRPS, 0.001)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver desconocido", "INVENTORY_STORAGE", "sqlite"},
		{"timeout cero", "INVENTORY_MUTATION_TIMEOUT", "0"},
		{"pool invertido", "DB_MIN_CONNS", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}

	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := FromViper(v)
	assert.Error(t, err, "producción sin JWT_SECRET")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss#1", DBName: "medequipos", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%231@db:5432/medequipos?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
