package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize = 10
	defaultRedisTimeout  = 3 * time.Second
)

// RedisOptions describes a Redis connection. Zero sizes and timeouts use defaults.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	// IOTimeout bounds every read and write on a pooled connection
	IOTimeout time.Duration
}

func (o RedisOptions) client() *redis.Options {
	opts := &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		PoolSize:     o.PoolSize,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.IOTimeout,
		WriteTimeout: o.IOTimeout,
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultRedisPoolSize
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisTimeout
	}
	if o.IOTimeout <= 0 {
		opts.ReadTimeout = defaultRedisTimeout
		opts.WriteTimeout = defaultRedisTimeout
	}
	return opts
}

// Redis holds the shared client of the public view cache
type Redis struct {
	Client *redis.Client
	addr   string
}

// NewRedis connects and verifies the server answers a ping
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	r := &Redis{Client: redis.NewClient(opts.client()), addr: opts.Addr}

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close()
		return nil, err
	}

	return r, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

// Ping checks if Redis is available
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", r.addr, err)
	}
	return nil
}
