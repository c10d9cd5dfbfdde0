package storage

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/pkg/errors"

	redis2 "skillswap/service/storage/redis"
)

// presence key: im:presence:<user>
// value: node id; TTL bounds the online validity period so a crashed node
// cannot leave users online forever.
func presenceKey(user string) string { return "im:presence:" + user }

const DefaultPresenceTTL = 2 * time.Minute

// PresenceOnline marks the user online on this node and renews the TTL.
// No-op when redis is not configured; the in-memory registry stays
// authoritative in-process.
func PresenceOnline(ctx context.Context, user, nodeID string, ttl time.Duration) error {
	rdb := redis2.GetRedis()
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultPresenceTTL
	}
	return rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err()
}

// PresenceOffline deletes the presence key.
func PresenceOffline(ctx context.Context, user string) error {
	rdb := redis2.GetRedis()
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports whether the user is online anywhere, and on which node.
func PresenceLookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	rdb := redis2.GetRedis()
	if rdb == nil {
		return "", false, nil
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
