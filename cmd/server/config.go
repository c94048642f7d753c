package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// config is the environment-driven server configuration. The --port
// flag takes precedence over GRPC_PORT when set.
type config struct {
	GRPCPort int `env:"GRPC_PORT" envDefault:"50051"`

	RedisAddress         string        `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	RedisUseTLS          bool          `env:"REDIS_USE_TLS" envDefault:"false"`

	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/catalog.json"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
