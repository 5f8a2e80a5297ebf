package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis dials redis and verifies the connection with a ping.
// Addr may be host:port or a redis:// URL.
func ConnectRedis(ctx context.Context, opts Options) (*redis.Client, error) {
	ro := &redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
	if strings.Contains(opts.Addr, "://") {
		parsed, err := redis.ParseURL(opts.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		ro = parsed
		if opts.Password != "" {
			ro.Password = opts.Password
		}
	}
	ro.PoolSize = 20
	ro.DialTimeout = 5 * time.Second
	ro.ReadTimeout = 3 * time.Second
	ro.WriteTimeout = 3 * time.Second
	rdb := redis.NewClient(ro)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}
