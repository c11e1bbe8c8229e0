package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT, default=8080"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`

	MySQLDSN string `env:"MYSQL_DSN, default=user:password@tcp(localhost:3306)/authgate?charset=utf8mb4&parseTime=True&loc=Local"`

	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB,   default=0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret       string        `env:"JWT_SECRET, default=change-me"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	BcryptCost      int           `env:"BCRYPT_COST, default=10"`

	SwaggerHost string `env:"SWAGGER_HOST"`

	// Seed credentials consumed only by cmd/seed.
	SeedAdminEmail     string `env:"SEED_ADMIN_EMAIL,    default=admin@authgate.local"`
	SeedAdminPassword  string `env:"SEED_ADMIN_PASSWORD, default=admin-change-me"`
	SeedAdminFirstName string `env:"SEED_ADMIN_FIRST_NAME, default=Admin"`
	SeedAdminLastName  string `env:"SEED_ADMIN_LAST_NAME,  default=User"`
}

// Load builds Config from the environment via go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
