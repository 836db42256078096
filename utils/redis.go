package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// listingVersionKey is bumped on every listing mutation so cached browse
// results are never served stale after the user's own write.
const listingVersionKey = "listings:ver"

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	password := os.Getenv("REDIS_PASSWORD")

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func GetCached(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), dest)
}

func SetCached(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// ListingCacheKey builds a cache key for a listing query, namespaced by the
// current mutation version.
func ListingCacheKey(ctx context.Context, queryParams map[string]string) string {
	version, err := RedisClient.Get(ctx, listingVersionKey).Result()
	if err != nil {
		version = "0"
	}
	return GenerateQueryCacheKey("listings:"+version, queryParams)
}

// BumpListingVersion invalidates all cached listing queries. Best effort: a
// failed bump only means the old entries age out by TTL.
func BumpListingVersion(ctx context.Context) {
	RedisClient.Incr(ctx, listingVersionKey)
}

func GenerateQueryCacheKey(prefix string, queryParams map[string]string) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(queryParams[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	hashStr := hex.EncodeToString(hash[:])

	return prefix + ":" + hashStr
}
