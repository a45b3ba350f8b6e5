package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fragments is a thread-safe store for rendered section HTML keyed by section id.
// It mirrors the selector cache the drawer used to keep: entries must be
// invalidated whenever the controller swaps a content subtree, otherwise callers
// serve markup for a cart state that no longer exists.
type Fragments struct {
	m   sync.Map
	rdb *redis.Client // optional write-through layer, nil when Redis is not configured
}

var (
	once     sync.Once
	instance *Fragments
)

// GetInstance returns the process-wide fragment cache.
func GetInstance() *Fragments {
	once.Do(func() {
		instance = NewFragments(nil)
	})
	return instance
}

// NewFragments creates a fragment cache. rdb may be nil.
func NewFragments(rdb *redis.Client) *Fragments {
	return &Fragments{rdb: rdb}
}

// UseRedis attaches a Redis client as a write-through layer. Call once at startup.
func (f *Fragments) UseRedis(rdb *redis.Client) {
	f.rdb = rdb
}

type fragmentItem struct {
	HTML      string
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

const redisKeyPrefix = "section:"

// Set stores rendered HTML for a section key with an optional TTL in seconds.
// TTL 0 means the entry lives until invalidated.
func (f *Fragments) Set(key, html string, ttl int64) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	f.m.Store(key, fragmentItem{HTML: html, ExpiresAt: expiresAt})
	if f.rdb != nil {
		f.rdb.Set(context.Background(), redisKeyPrefix+key, html, time.Duration(ttl)*time.Second)
	}
}

// Get returns the cached HTML for a section key, falling back to Redis when the
// local entry is missing.
func (f *Fragments) Get(key string) (string, bool) {
	if v, ok := f.m.Load(key); ok {
		item := v.(fragmentItem)
		if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
			f.m.Delete(key)
			return "", false
		}
		return item.HTML, true
	}
	if f.rdb != nil {
		html, err := f.rdb.Get(context.Background(), redisKeyPrefix+key).Result()
		if err == nil {
			f.m.Store(key, fragmentItem{HTML: html})
			return html, true
		}
	}
	return "", false
}

// Invalidate drops one or more section keys.
func (f *Fragments) Invalidate(keys ...string) {
	for _, key := range keys {
		f.m.Delete(key)
		if f.rdb != nil {
			f.rdb.Del(context.Background(), redisKeyPrefix+key)
		}
	}
}

// InvalidateAll drops every cached fragment. Called after a wholesale content
// replace, where any retained entry would reference detached markup.
func (f *Fragments) InvalidateAll() {
	var keys []string
	f.m.Range(func(key, _ interface{}) bool {
		keys = append(keys, key.(string))
		f.m.Delete(key)
		return true
	})
	if f.rdb != nil && len(keys) > 0 {
		full := make([]string, len(keys))
		for i, k := range keys {
			full[i] = redisKeyPrefix + k
		}
		f.rdb.Del(context.Background(), full...)
	}
}

// Keys returns all live section keys (for diagnostics).
func (f *Fragments) Keys() []string {
	var keys []string
	now := time.Now().UnixNano()
	f.m.Range(func(key, value interface{}) bool {
		item := value.(fragmentItem)
		if item.ExpiresAt == 0 || now <= item.ExpiresAt {
			keys = append(keys, key.(string))
		}
		return true
	})
	return keys
}
