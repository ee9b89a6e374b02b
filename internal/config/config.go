package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Security SecurityConfig `env:",prefix="`
	Store    StoreConfig    `env:",prefix=STORE_"`
	Cache    CacheConfig    `env:",prefix=CACHE_"`
	Frontend FrontendConfig `env:",prefix=FRONTEND_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=3001"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host        string `env:"HOST,default=localhost"`
	Port        string `env:"PORT,default=5432"`
	User        string `env:"USER,default=easyped"`
	Password    string `env:"PASSWORD,default=easyped_password"`
	DBName      string `env:"DB,default=easyped_epilepsy"`
	SSLMode     string `env:"SSLMODE,default=disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE,default=true"`
}

type RedisConfig struct {
	Host     string   `env:"HOST,default=localhost"`
	Port     string   `env:"PORT,default=6379"`
	Password string   `env:"PASSWORD,default="`
	DB       int      `env:"DB,default=0"`
	PoolSize int      `env:"POOL_SIZE,default=10"`
	Timeout  Duration `env:"TIMEOUT,default=3s"`
}

type JWTConfig struct {
	Secret      string   `env:"SECRET,required"`
	TokenExpiry Duration `env:"TOKEN_EXPIRY,default=7d"`
}

type SecurityConfig struct {
	BCryptCost int `env:"BCRYPT_COST,default=12"`
}

// StoreConfig bounds every database round trip.
type StoreConfig struct {
	OperationTimeout Duration `env:"OPERATION_TIMEOUT,default=5s"`
}

type CacheConfig struct {
	PublicViewTTL Duration `env:"PUBLIC_VIEW_TTL,default=5m"`
}

// FrontendConfig describes where QR links point to.
type FrontendConfig struct {
	URL        string `env:"URL,default=http://localhost:3000"`
	PublicPath string `env:"PUBLIC_PATH,default=emergency"`
	QRSize     int    `env:"QR_SIZE,default=256"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000,http://localhost:3002"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.Frontend.QRSize <= 0 {
		return nil, fmt.Errorf("FRONTEND_QR_SIZE must be positive, got %d", config.Frontend.QRSize)
	}

	return &config, nil
}
