package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/observability"
)

// exerciseCache runs the behaviour every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "thickness:missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "thickness:k6", []byte(`{"pages":3}`), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "thickness:k6")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"pages":3}` {
		t.Errorf("Get returned %q", data)
	}

	if err := c.Set(ctx, "thickness:k6", []byte(`{"pages":4}`), time.Hour); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	data, _, _ = c.Get(ctx, "thickness:k6")
	if string(data) != `{"pages":4}` {
		t.Errorf("overwrite not visible, got %q", data)
	}

	if err := c.Delete(ctx, "thickness:k6"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "thickness:k6"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "thickness:k6"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "key"); hit || data != nil || err != nil {
		t.Error("NullCache should never store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestBadgerCache(t *testing.T) {
	c, err := NewBadgerCache("")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)

	ctx := context.Background()
	if err := c.Set(ctx, "x", []byte("1"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "x"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestBadgerCacheOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := NewBadgerCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "persist", []byte("yes"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = NewBadgerCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	data, hit, err := c.Get(ctx, "persist")
	if err != nil || !hit || string(data) != "yes" {
		t.Errorf("reopened cache: %q hit %v err %v", data, hit, err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("BOOKTHICKNESS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BOOKTHICKNESS_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []Backend{BackendFile, BackendBadger, BackendNone} {
		dir := t.TempDir()
		if kind == BackendBadger {
			dir = ""
		}
		c, err := Open(ctx, kind, dir)
		if err != nil {
			t.Fatalf("Open(%s): %v", kind, err)
		}
		if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Errorf("%s Set: %v", kind, err)
		}
		c.Close()
	}

	_, err := Open(ctx, "memcached", "")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown backend: got %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	t1 := k.ThicknessKey("abc", ThicknessKeyOpts{StartPages: 1, Engine: "search"})
	t2 := k.ThicknessKey("abc", ThicknessKeyOpts{StartPages: 2, Engine: "search"})
	t3 := k.ThicknessKey("abd", ThicknessKeyOpts{StartPages: 1, Engine: "search"})
	if t1 == t2 || t1 == t3 {
		t.Error("different inputs should produce different thickness keys")
	}
	if !strings.HasPrefix(t1, "thickness:") {
		t.Errorf("ThicknessKey unexpected: %s", t1)
	}

	e1 := k.EmbeddingKey("abc", EmbeddingKeyOpts{Pages: 2, Spines: []string{"1,2,3"}})
	e2 := k.EmbeddingKey("abc", EmbeddingKeyOpts{Pages: 2, Spines: []string{"1,3,2"}})
	if e1 == e2 {
		t.Error("different spines should produce different embedding keys")
	}
	if KeyType(e1) != "embedding" {
		t.Errorf("KeyType(%s) = %s", e1, KeyType(e1))
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "team:")
	key := scoped.ThicknessKey("abc", ThicknessKeyOpts{})
	want := "team:" + NewDefaultKeyer().ThicknessKey("abc", ThicknessKeyOpts{})
	if key != want {
		t.Errorf("ScopedKeyer key = %s, want %s", key, want)
	}
	if KeyType(key) != "thickness" {
		t.Errorf("KeyType should ignore scope, got %s", KeyType(key))
	}
	if KeyType("plain") != "unknown" {
		t.Error("KeyType of an unstructured key should be unknown")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestInstrument(t *testing.T) {
	h := &countingHooks{}
	observability.SetCacheHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	c := Instrument(NewNullCache())
	if Instrument(c) != c {
		t.Error("Instrument should not wrap twice")
	}
	c.Get(ctx, "thickness:a")
	c.Set(ctx, "thickness:a", []byte("x"), 0)
	c.Get(ctx, "thickness:a")

	if h.misses != 2 || h.hits != 0 || h.set != 1 {
		t.Errorf("hooks: hits %d misses %d set %d", h.hits, h.misses, h.set)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	base := os.ErrDeadlineExceeded
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(base) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(os.ErrDeadlineExceeded)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return os.ErrNotExist
	})
	if err != os.ErrNotExist || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(os.ErrDeadlineExceeded)
	})
	if !IsRetryable(err) || calls != retryAttempts {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(os.ErrDeadlineExceeded)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
