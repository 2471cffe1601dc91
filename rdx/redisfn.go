package rdx

import (
	"log"
	"os"
	"time"

	"perch/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Conn.Ping(globals.Ctx).Err(); err != nil {
		log.Printf("Redis ping failed: %v", err)
	}
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

// RdxSetNX acquires key only if it does not exist yet. Used as a
// lightweight distributed lock (e.g. per-listing reservation locks).
func RdxSetNX(key, value string, ttl time.Duration) (bool, error) {
	return Conn.SetNX(globals.Ctx, key, value, ttl).Result()
}

// unlockScript deletes a lock key only while it still holds the caller's
// token; an expired lock re-acquired by another holder is left alone.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RdxUnlock releases a lock taken with RdxSetNX. Reports whether the key
// still held value and was deleted.
func RdxUnlock(key, value string) (bool, error) {
	n, err := unlockScript.Run(globals.Ctx, Conn, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(globals.Ctx, hash, field).Result()
}
