package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`
	StoreName string        `env:"STORE_NAME, default=Retail POS"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Sales  SalesConfig
	Report ReportConfig
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database    string        `env:"MONGO_DB,            default=pos_system"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	DB       int    `env:"REDIS_DB,        default=0"`
	Password string `env:"REDIS_PASSWORD"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type KafkaConfig struct {
	// Brokers is optional; without it sale events are dropped.
	Brokers   []string `env:"KAFKA_BROKERS"`
	SaleTopic string   `env:"KAFKA_TOPIC_SALES, default=pos.sales"`
}

type SalesConfig struct {
	StockPolicy  string `env:"STOCK_POLICY,  default=reject"`
	EventWorkers int    `env:"EVENT_WORKERS, default=4"`
}

type ReportConfig struct {
	CacheTTL time.Duration `env:"REPORT_CACHE_TTL, default=60s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Sales.StockPolicy {
	case "reject", "clamp":
	default:
		errs = append(errs, fmt.Errorf("STOCK_POLICY must be reject or clamp, got %q", c.Sales.StockPolicy))
	}
	if c.Sales.EventWorkers < 0 {
		errs = append(errs, errors.New("EVENT_WORKERS cannot be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
