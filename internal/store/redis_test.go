package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestRedisStoreInProcess(t *testing.T) {
	st, _ := newTestRedis(t)
	exerciseStore(t, st)
}

func TestRedisStoreExpiresIdleSessions(t *testing.T) {
	st, mr := newTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleSession("idle", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "idle"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	mr.FastForward(30 * time.Second)
	if err := st.Save(ctx, sampleSession("idle", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "idle"); ttl != time.Minute {
		t.Fatalf("ttl after save = %v, want reset to 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := st.Get(ctx, "idle"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(expired) error = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreServerError(t *testing.T) {
	st, mr := newTestRedis(t)
	mr.SetError("ERR server failure")

	_, err := st.Get(context.Background(), "abc")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want a wrapped server error", err)
	}
	if err := st.Ping(context.Background()); err == nil {
		t.Fatal("Ping should fail while the server returns errors")
	}
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	st, mr := newTestRedis(t)
	if err := mr.Set(redisKeyPrefix+"bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	_, err := st.Get(context.Background(), "bad")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want decode error", err)
	}
}

// Runs against a live server only when REDIS_ADDR is set.
func TestRedisStoreContract(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	st := NewRedisStoreWithClient(client, time.Minute)
	defer st.Close()
	exerciseStore(t, st)

	ctx := context.Background()
	if err := st.Save(ctx, sampleSession("ttl", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	ttl, err := client.TTL(ctx, redisKeyPrefix+"ttl").Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v, want within (0, 1m]", ttl)
	}
	_ = st.Delete(ctx, "ttl")
}
