package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHotCachePutGet(t *testing.T) {
	c := NewHotCache(4)
	c.Put("a", []byte(`{"v":1}`), time.Now().Add(time.Minute))

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get missed a fresh entry")
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("Get = %s, want stored payload", got)
	}

	if _, ok := c.Get("absent"); ok {
		t.Fatal("Get hit an absent key")
	}
}

func TestHotCacheExpiry(t *testing.T) {
	c := NewHotCache(4)
	c.Put("a", []byte(`1`), time.Now().Add(-time.Second))

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get hit an expired entry")
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d after expired read, want 0", c.Len())
	}
}

func TestHotCacheEviction(t *testing.T) {
	c := NewHotCache(2)
	deadline := time.Now().Add(time.Minute)
	c.Put("a", []byte(`1`), deadline)
	c.Put("b", []byte(`2`), deadline)

	// Touch a so b becomes the eviction candidate.
	c.Get("a")
	c.Put("c", []byte(`3`), deadline)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry was evicted")
	}
	if _, _, evictions := c.Stats(); evictions != 1 {
		t.Fatalf("evictions = %d, want 1", evictions)
	}
}

func openTestShared(t *testing.T, maxEntries int) *SharedCache {
	t.Helper()
	c, err := OpenShared(filepath.Join(t.TempDir(), "cache.db"), maxEntries)
	if err != nil {
		t.Fatalf("OpenShared: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSharedCachePutGet(t *testing.T) {
	c := openTestShared(t, 100)

	if err := c.Put("k", "recipe", []byte(`{"heat":0.1}`), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get missed a fresh entry")
	}
	if string(got) != `{"heat":0.1}` {
		t.Fatalf("Get = %s, want stored payload", got)
	}
}

func TestSharedCacheExpiry(t *testing.T) {
	c := openTestShared(t, 100)

	if err := c.Put("k", "recipe", []byte(`{}`), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("Get hit an expired entry")
	}
	if n, _ := c.Len(); n != 0 {
		t.Fatalf("Len = %d after expired read, want 0", n)
	}
}

func TestSharedCacheCorruptPayload(t *testing.T) {
	c := openTestShared(t, 100)

	_, err := c.conn.Exec(`INSERT INTO calc_cache
		(cache_key, calc_type, payload, computed_at, expires_at, hit_count)
		VALUES ('bad', 'recipe', '{truncated', 0, ?, 0)`,
		time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	if _, ok := c.Get("bad"); ok {
		t.Fatal("Get returned a corrupt payload")
	}
	if n, _ := c.Len(); n != 0 {
		t.Fatalf("corrupt row survived: Len = %d, want 0", n)
	}
}

func TestSharedCacheTrim(t *testing.T) {
	c := openTestShared(t, 2)
	deadline := time.Now().Add(time.Hour)

	c.Put("a", "recipe", []byte(`{}`), deadline)
	c.Put("b", "recipe", []byte(`{}`), deadline)

	// Backdate so the oldest entry is unambiguous.
	c.conn.Exec("UPDATE calc_cache SET computed_at = 100 WHERE cache_key = 'a'")
	c.conn.Exec("UPDATE calc_cache SET computed_at = 200 WHERE cache_key = 'b'")

	c.Put("c", "recipe", []byte(`{}`), deadline)

	n, err := c.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("Len = %d after trim, want 2", n)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry survived trim")
	}
}

func TestSharedCacheDeleteType(t *testing.T) {
	c := openTestShared(t, 100)
	deadline := time.Now().Add(time.Hour)

	c.Put("r1", "recipe", []byte(`{}`), deadline)
	c.Put("r2", "recipe", []byte(`{}`), deadline)
	c.Put("m1", "moment", []byte(`{}`), deadline)

	n, err := c.DeleteType("recipe")
	if err != nil {
		t.Fatalf("DeleteType: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteType removed %d rows, want 2", n)
	}
	if _, ok := c.Get("m1"); !ok {
		t.Fatal("unrelated type was deleted")
	}
}

func TestSharedCacheSweep(t *testing.T) {
	c := openTestShared(t, 100)

	c.Put("old", "recipe", []byte(`{}`), time.Now().Add(-time.Minute))
	c.Put("new", "recipe", []byte(`{}`), time.Now().Add(time.Hour))

	n, err := c.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("Sweep removed %d rows, want 1", n)
	}
}

func TestResultCacheWriteThenRead(t *testing.T) {
	rc := New(NewHotCache(16), openTestShared(t, 100))
	computes := 0

	got, err := rc.GetOrCompute(context.Background(), "recipe", "r1", time.Minute, func(context.Context) ([]byte, error) {
		computes++
		return []byte(`{"v":42}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if string(got) != `{"v":42}` {
		t.Fatalf("GetOrCompute = %s, want computed payload", got)
	}

	// Second read within TTL must not recompute.
	got, err = rc.GetOrCompute(context.Background(), "recipe", "r1", time.Minute, func(context.Context) ([]byte, error) {
		computes++
		return []byte(`{"v":99}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if string(got) != `{"v":42}` {
		t.Fatalf("GetOrCompute = %s, want cached payload", got)
	}
	if computes != 1 {
		t.Fatalf("computes = %d, want 1", computes)
	}
}

func TestResultCacheExpiryRecomputes(t *testing.T) {
	rc := New(NewHotCache(16), nil)
	var computes atomic.Int64

	compute := func(context.Context) ([]byte, error) {
		computes.Add(1)
		return []byte(`{}`), nil
	}

	if _, err := rc.GetOrCompute(context.Background(), "recipe", "r1", 20*time.Millisecond, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := rc.GetOrCompute(context.Background(), "recipe", "r1", 20*time.Millisecond, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	if n := computes.Load(); n != 2 {
		t.Fatalf("computes = %d after expiry, want 2", n)
	}
}

func TestResultCacheSingleflight(t *testing.T) {
	rc := New(NewHotCache(16), nil)
	var computes atomic.Int64

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rc.GetOrCompute(context.Background(), "moment", "now", time.Minute, func(context.Context) ([]byte, error) {
				computes.Add(1)
				time.Sleep(50 * time.Millisecond)
				return []byte(`{}`), nil
			})
		}()
	}
	close(start)
	wg.Wait()

	if n := computes.Load(); n != 1 {
		t.Fatalf("computes = %d under concurrent load, want 1", n)
	}
}

func TestResultCacheComputeError(t *testing.T) {
	rc := New(NewHotCache(16), nil)
	wantErr := errors.New("feed unavailable")

	_, err := rc.GetOrCompute(context.Background(), "moment", "now", time.Minute, func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute error = %v, want %v", err, wantErr)
	}

	// The failure must not be cached.
	got, err := rc.GetOrCompute(context.Background(), "moment", "now", time.Minute, func(context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute after failure: %v", err)
	}
	if string(got) != `{}` {
		t.Fatalf("GetOrCompute = %s, want fresh payload", got)
	}
}

func TestResultCacheInvalidate(t *testing.T) {
	rc := New(NewHotCache(16), openTestShared(t, 100))
	rc.Put("recipe", "r1", []byte(`{}`), time.Minute)

	rc.Invalidate("recipe", "r1")
	if _, ok := rc.Get("recipe", "r1", time.Minute); ok {
		t.Fatal("entry survived invalidation")
	}
}
