package cache

import (
	"testing"
	"time"
)

// TestCacheSetGet проверяет запись и чтение по префиксу.
func TestCacheSetGet(t *testing.T) {
	rc, err := New(time.Minute)
	if err != nil {
		t.Fatalf("expected cache, got %v", err)
	}

	rc.Set("alerts", "low-stock", []string{"flour"})
	rc.Wait()

	value, ok := rc.Get("alerts", "low-stock")
	if !ok {
		t.Fatal("expected cached value")
	}

	items, ok := value.([]string)
	if !ok || len(items) != 1 || items[0] != "flour" {
		t.Fatalf("unexpected cached value: %v", value)
	}
}

// TestCacheInvalidate проверяет сброс по префиксу.
func TestCacheInvalidate(t *testing.T) {
	rc, err := New(time.Minute)
	if err != nil {
		t.Fatalf("expected cache, got %v", err)
	}

	rc.Set("alerts", "low-stock", 1)
	rc.Set("alerts", "expiring", 2)
	rc.Set("reports", "summary", 3)
	rc.Wait()

	rc.Invalidate("alerts")

	if _, ok := rc.Get("alerts", "low-stock"); ok {
		t.Fatal("expected low-stock to be invalidated")
	}
	if _, ok := rc.Get("alerts", "expiring"); ok {
		t.Fatal("expected expiring to be invalidated")
	}
	if _, ok := rc.Get("reports", "summary"); !ok {
		t.Fatal("expected other prefixes to survive")
	}
}

// TestNilCache проверяет, что выключенный кэш безопасен.
func TestNilCache(t *testing.T) {
	var rc *ReportCache

	rc.Set("alerts", "low-stock", 1)
	rc.Invalidate("alerts")

	if _, ok := rc.Get("alerts", "low-stock"); ok {
		t.Fatal("expected miss on nil cache")
	}
}
