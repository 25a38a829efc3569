package pagecache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Runs against a real server when POSTBOARD_TEST_REDIS_ADDR is set.
func TestRedis(t *testing.T) {
	addr := os.Getenv("POSTBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("POSTBOARD_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	r := NewRedis(client, "postboard:test:"+time.Now().Format("150405.000")+":")
	if _, ok, err := r.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("Get empty = (%v, %v)", ok, err)
	}
	if err := r.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := r.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("Get = (%q, %v, %v)", val, ok, err)
	}
	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := r.Get(ctx, "k"); ok {
		t.Error("entry survived Clear")
	}
}
