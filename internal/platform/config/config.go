package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	SinkLog    = "log"
	SinkPubSub = "pubsub"
	SinkNone   = "none"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	EnableDBCheck bool

	StorageDriver  string
	DatabaseURL    string
	MigrationsPath string

	RedisURL       string
	LockBackend    string
	LockTTL        time.Duration
	LockWait       time.Duration
	StateStore     string
	IdempotencyTTL time.Duration
	RateLimit      string // ulule/limiter format, e.g. "100-M"; empty disables

	EventSink             string
	PubSubProjectID       string
	PubSubTopic           string
	PubSubCredentialsJSON string

	JWTSecret          string // empty disables actor attribution
	CORSAllowedOrigins []string

	DefaultCurrency      string
	RoundingPolicy       domain.RoundingPolicy
	MarginWarningPercent decimal.Decimal
	DistributionAccounts domain.DistributionAccounts

	IntegrityInterval time.Duration // zero disables the periodic reconciliation
	NodeID            int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("LOCK_BACKEND", BackendMemory)
	viper.SetDefault("LOCK_TTL", "30s")
	viper.SetDefault("LOCK_WAIT", "5s")
	viper.SetDefault("STATE_STORE", BackendMemory)
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("EVENT_SINK", SinkLog)
	viper.SetDefault("PUBSUB_PROJECT_ID", "")
	viper.SetDefault("PUBSUB_TOPIC", "ledger-events")
	viper.SetDefault("PUBSUB_CREDENTIALS_JSON", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("ROUNDING_POLICY", string(domain.RoundLargestRemainder))
	viper.SetDefault("MARGIN_WARNING_PERCENT", "10")
	viper.SetDefault("COST_ACCOUNT_ID", domain.AccountVaultMain)
	viper.SetDefault("FREIGHT_ACCOUNT_ID", domain.AccountFreight)
	viper.SetDefault("PROFIT_ACCOUNT_ID", domain.AccountProfit)
	viper.SetDefault("INTEGRITY_INTERVAL", "0s")
	viper.SetDefault("NODE_ID", 1)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		LogLevel:              strings.ToLower(viper.GetString("LOG_LEVEL")),
		EnableDBCheck:         viper.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:         strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		MigrationsPath:        viper.GetString("MIGRATIONS_PATH"),
		RedisURL:              viper.GetString("REDIS_URL"),
		LockBackend:           strings.ToLower(viper.GetString("LOCK_BACKEND")),
		LockTTL:               viper.GetDuration("LOCK_TTL"),
		LockWait:              viper.GetDuration("LOCK_WAIT"),
		StateStore:            strings.ToLower(viper.GetString("STATE_STORE")),
		IdempotencyTTL:        viper.GetDuration("IDEMPOTENCY_TTL"),
		RateLimit:             viper.GetString("RATE_LIMIT"),
		EventSink:             strings.ToLower(viper.GetString("EVENT_SINK")),
		PubSubProjectID:       viper.GetString("PUBSUB_PROJECT_ID"),
		PubSubTopic:           viper.GetString("PUBSUB_TOPIC"),
		PubSubCredentialsJSON: viper.GetString("PUBSUB_CREDENTIALS_JSON"),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		CORSAllowedOrigins:    splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		DefaultCurrency:       strings.ToUpper(viper.GetString("DEFAULT_CURRENCY")),
		RoundingPolicy:        domain.RoundingPolicy(strings.ToLower(viper.GetString("ROUNDING_POLICY"))),
		DistributionAccounts: domain.DistributionAccounts{
			Cost:    viper.GetString("COST_ACCOUNT_ID"),
			Freight: viper.GetString("FREIGHT_ACCOUNT_ID"),
			Profit:  viper.GetString("PROFIT_ACCOUNT_ID"),
		},
		IntegrityInterval: viper.GetDuration("INTEGRITY_INTERVAL"),
		NodeID:            viper.GetInt64("NODE_ID"),
	}

	margin, err := decimal.NewFromString(viper.GetString("MARGIN_WARNING_PERCENT"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARGIN_WARNING_PERCENT: %w", err)
	}
	cfg.MarginWarningPercent = margin

	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. Requests will be attributed to the system actor.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option combinations that cannot work together.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == StoragePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	for name, v := range map[string]string{"LOCK_BACKEND": c.LockBackend, "STATE_STORE": c.StateStore} {
		switch v {
		case BackendMemory:
		case BackendRedis:
			if c.RedisURL == "" {
				return fmt.Errorf("REDIS_URL is required when %s=%s", name, BackendRedis)
			}
		default:
			return fmt.Errorf("unknown %s %q", name, v)
		}
	}
	switch c.EventSink {
	case SinkLog, SinkNone:
	case SinkPubSub:
		if c.PubSubProjectID == "" {
			return fmt.Errorf("PUBSUB_PROJECT_ID is required when EVENT_SINK=%s", SinkPubSub)
		}
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", c.EventSink)
	}
	switch c.RoundingPolicy {
	case domain.RoundIndependent, domain.RoundLargestRemainder:
	default:
		return fmt.Errorf("unknown ROUNDING_POLICY %q", c.RoundingPolicy)
	}
	if c.LockWait <= 0 || c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_WAIT and LOCK_TTL must be positive")
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("NODE_ID must be within [0, 1023], got %d", c.NodeID)
	}
	ids := c.DistributionAccounts
	if ids.Cost == "" || ids.Freight == "" || ids.Profit == "" {
		return fmt.Errorf("COST_ACCOUNT_ID, FREIGHT_ACCOUNT_ID and PROFIT_ACCOUNT_ID must be set")
	}
	if ids.Cost == ids.Freight || ids.Cost == ids.Profit || ids.Freight == ids.Profit {
		return fmt.Errorf("distribution accounts must be distinct")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
