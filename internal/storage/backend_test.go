package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/sakif/robotics-league/internal/storage"
	"github.com/sakif/robotics-league/internal/storage/storagetest"
)

func TestMemory(t *testing.T) {
	storagetest.RunBackend(t, func(t *testing.T) storage.Backend {
		return storage.NewMemory()
	})
}

// Needs a live server: REDIS_ADDR=localhost:6379 go test ./internal/storage/
func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	storagetest.RunBackend(t, func(t *testing.T) storage.Backend {
		// a fresh prefix per subtest keeps runs independent
		prefix := "test-" + xid.New().String()
		t.Cleanup(func() {
			ctx := context.Background()
			iter := client.Scan(ctx, 0, prefix+":*", 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
		})
		return storage.NewRedisFromClient(client, prefix)
	})
}
