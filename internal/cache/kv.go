package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss means the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// KVStore is the key-value surface the cache needs.
// Values are versioned: SetIfNewer only replaces a value whose version sorts
// lower than the new one, and the check and write happen as one step.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetIfNewer(ctx context.Context, key, version, value string, ttl time.Duration) (bool, error)
}

// versionSep splits the stored version from the value
const versionSep = "\n"

// setIfNewerScript checks the version and writes in one server-side step.
// KEYS[1] key, ARGV[1] version, ARGV[2] value, ARGV[3] ttl in ms (0 keeps no expiry)
var setIfNewerScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local sep = string.find(cur, '\n', 1, true)
	if sep and string.sub(cur, 1, sep - 1) > ARGV[1] then
		return 0
	end
end
local entry = ARGV[1] .. '\n' .. ARGV[2]
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], entry, 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], entry)
end
return 1
`)

// RedisKVStore is a KVStore on go-redis
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	_, value, ok := strings.Cut(val, versionSep)
	if !ok {
		// Unversioned entry from an older writer
		return "", ErrCacheMiss
	}
	return value, nil
}

// SetIfNewer stores value under key unless the key already holds a higher version.
// It reports whether the value was written.
func (r *RedisKVStore) SetIfNewer(ctx context.Context, key, version, value string, ttl time.Duration) (bool, error) {
	written, err := setIfNewerScript.Run(ctx, r.client, []string{key}, version, value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}
