package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"skillswap/tools/errs"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

var rdb *redis.Client

// InitRedis connects the process-wide client. Callers that can run without
// redis should treat an error here as a soft failure.
func InitRedis(c Config) error {
	if c.Addr == "" {
		return errs.New("redis addr is empty")
	}
	cli := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return errs.WrapMsg(err, "redis ping failed", "addr", c.Addr)
	}
	rdb = cli
	return nil
}

// GetRedis returns the shared client, nil when redis was never initialized.
func GetRedis() *redis.Client { return rdb }
