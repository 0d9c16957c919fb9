package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ReportCache кэширует вычисленные отчеты и складские алерты. Ключи
// группируются по префиксу, чтобы запись по ингредиенту сбрасывала все
// представления склада разом.
type ReportCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu   sync.Mutex
	keys map[string]map[string]struct{}
}

// New создает кэш отчетов с заданным TTL.
func New(ttl time.Duration) (*ReportCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &ReportCache{
		cache: c,
		ttl:   ttl,
		keys:  make(map[string]map[string]struct{}),
	}, nil
}

// Get возвращает закэшированное значение по префиксу и ключу.
func (rc *ReportCache) Get(prefix, key string) (interface{}, bool) {
	if rc == nil {
		return nil, false
	}

	return rc.cache.Get(prefix + ":" + key)
}

// Set сохраняет значение и запоминает ключ для последующей инвалидации.
func (rc *ReportCache) Set(prefix, key string, value interface{}) {
	if rc == nil {
		return
	}

	full := prefix + ":" + key

	rc.mu.Lock()
	group, ok := rc.keys[prefix]
	if !ok {
		group = make(map[string]struct{})
		rc.keys[prefix] = group
	}
	group[full] = struct{}{}
	rc.mu.Unlock()

	rc.cache.SetWithTTL(full, value, 1, rc.ttl)
}

// Invalidate сбрасывает все значения с данным префиксом.
func (rc *ReportCache) Invalidate(prefix string) {
	if rc == nil {
		return
	}

	rc.mu.Lock()
	group := rc.keys[prefix]
	delete(rc.keys, prefix)
	rc.mu.Unlock()

	for key := range group {
		rc.cache.Del(key)
	}
}

// Wait дожидается применения отложенных записей. Нужен только в тестах.
func (rc *ReportCache) Wait() {
	if rc == nil {
		return
	}

	rc.cache.Wait()
}
