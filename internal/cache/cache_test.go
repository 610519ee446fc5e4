package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// The memory and redis backends must behave identically through the Cache
// interface; the database backend shares the same contract but needs a
// live postgres, so it is covered by the shared suite only when one of the
// in-process backends stands in.
func runCacheSuite(t *testing.T, c Cache) {
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Fatal("expected a miss")
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := c.Set(ctx, "accounts", `[{"id":"acc-1"}]`); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		value, ok, err := c.Get(ctx, "accounts")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || value != `[{"id":"acc-1"}]` {
			t.Fatalf("unexpected value %q ok=%v", value, ok)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := c.Set(ctx, "accounts", `[]`); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		value, ok, err := c.Get(ctx, "accounts")
		if err != nil || !ok {
			t.Fatalf("Get failed: %v ok=%v", err, ok)
		}
		if value != `[]` {
			t.Fatalf("expected overwritten value, got %q", value)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := c.Set(ctx, "zones", `[]`); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := c.Delete(ctx, "zones"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, ok, err := c.Get(ctx, "zones")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Fatal("expected deleted key to miss")
		}
	})

	t.Run("count and clear", func(t *testing.T) {
		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		for _, key := range []string{"accounts", "zones", "library:acc-1"} {
			if err := c.Set(ctx, key, "{}"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
		count, err := c.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 3 {
			t.Fatalf("expected 3 entries, got %d", count)
		}
		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		count, err = c.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected empty cache, got %d entries", count)
		}
	})
}

func TestMemoryCache(t *testing.T) {
	runCacheSuite(t, NewMemoryCache())
}

func TestRedisCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	runCacheSuite(t, NewRedisCache(client))
}

func TestRedisCacheClearOnlyTouchesOwnNamespace(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	c := NewRedisCache(client)

	if err := client.Set(ctx, "other-app:session", "keep", 0).Err(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := c.Set(ctx, "accounts", "{}"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if v, err := client.Get(ctx, "other-app:session").Result(); err != nil || v != "keep" {
		t.Fatalf("foreign key was touched: %q %v", v, err)
	}
}
