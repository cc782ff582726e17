package config

import (
	"testing"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, domain.RoundLargestRemainder, cfg.RoundingPolicy)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, domain.AccountVaultMain, cfg.DistributionAccounts.Cost)
	assert.Equal(t, "10", cfg.MarginWarningPercent.String())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ROUNDING_POLICY", "INDEPENDENT")
	t.Setenv("LOCK_WAIT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, domain.RoundIndependent, cfg.RoundingPolicy)
	assert.Equal(t, "250ms", cfg.LockWait.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StorageDriver:  StorageMemory,
			LockBackend:    BackendMemory,
			StateStore:     BackendMemory,
			EventSink:      SinkLog,
			RoundingPolicy: domain.RoundLargestRemainder,
			LockTTL:        1,
			LockWait:       1,
			NodeID:         1,
			DistributionAccounts: domain.DistributionAccounts{
				Cost: "vault-main", Freight: "freight", Profit: "profit",
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without url", func(c *Config) { c.StorageDriver = StoragePostgres }},
		{"redis locks without url", func(c *Config) { c.LockBackend = BackendRedis }},
		{"redis state without url", func(c *Config) { c.StateStore = BackendRedis }},
		{"pubsub without project", func(c *Config) { c.EventSink = SinkPubSub }},
		{"unknown rounding", func(c *Config) { c.RoundingPolicy = "banker" }},
		{"node id out of range", func(c *Config) { c.NodeID = 2048 }},
		{"shared accounts", func(c *Config) { c.DistributionAccounts.Profit = "freight" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
