package cache

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestMemoryCacheCleanupRemovesExpired(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(time.Millisecond))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "stale", "v", 5*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mc.Set(ctx, "fresh", "v", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mc.mutex.RLock()
		_, present := mc.data["stale"]
		mc.mutex.RUnlock()
		if !present {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mc.mutex.RLock()
	_, staleKept := mc.data["stale"]
	_, freshKept := mc.data["fresh"]
	mc.mutex.RUnlock()
	if staleKept {
		t.Fatalf("expired entry must be swept")
	}
	if !freshKept {
		t.Fatalf("live entry must survive the sweep")
	}
}

func TestMemoryCacheCloseStopsCleanup(t *testing.T) {
	before := runtime.NumGoroutine()

	mc := NewMemoryCache(WithMemoryCleanup(time.Millisecond))
	if err := mc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := runtime.NumGoroutine(); got > before {
		t.Fatalf("cleanup goroutine still running: %d > %d", got, before)
	}
}
