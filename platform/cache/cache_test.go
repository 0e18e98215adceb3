package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := payload{Name: "go-basics", Count: 3}
	if err := c.Set(ctx, "courses:detail:go-basics", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	if err := c.Get(ctx, "courses:detail:go-basics", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var out payload
	err := c.Get(context.Background(), "absent", &out)
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestGetAfterExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short-lived", payload{Name: "x"}, time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var out payload
	if err := c.Get(ctx, "short-lived", &out); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestDeletePatternRemovesOnlyMatches(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	keys := []string{"courses:detail:a", "courses:detail:b", "courses:list:1"}
	for _, key := range keys {
		if err := c.SetString(ctx, key, "v", 0); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	if err := c.SetString(ctx, "categories", "v", 0); err != nil {
		t.Fatalf("seed categories: %v", err)
	}

	if err := c.DeletePattern(ctx, "courses:*"); err != nil {
		t.Fatalf("delete pattern: %v", err)
	}

	for _, key := range keys {
		if mr.Exists(key) {
			t.Fatalf("key %s should have been removed", key)
		}
	}
	if !mr.Exists("categories") {
		t.Fatal("non-matching key was removed")
	}
}

func TestExistsAndSetString(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "blacklist:abc")
	if err != nil || ok {
		t.Fatalf("exists on absent key = (%v, %v)", ok, err)
	}

	if err := c.SetString(ctx, "blacklist:abc", "1", time.Minute); err != nil {
		t.Fatalf("set string: %v", err)
	}

	ok, err = c.Exists(ctx, "blacklist:abc")
	if err != nil || !ok {
		t.Fatalf("exists after set = (%v, %v)", ok, err)
	}
}

func TestIncrAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("incr = %d, want %d", got, want)
		}
	}

	if err := c.Expire(ctx, "counter", time.Second); err != nil {
		t.Fatalf("expire: %v", err)
	}
	mr.FastForward(2 * time.Second)

	got, err := c.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("incr after expiry: %v", err)
	}
	if got != 1 {
		t.Fatalf("counter restarted at %d, want 1", got)
	}
}
