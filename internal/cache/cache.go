package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: sha1 for cache keys, not security
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"longcatnode/internal/core"
	"longcatnode/internal/util"
)

// LRUCache is a thread-safe LRU cache with expiration
type LRUCache struct {
	capacity int
	items    map[string]*CacheItem
	mu       sync.Mutex
	head     *CacheItem
	tail     *CacheItem
	ctx      context.Context
	cancel   context.CancelFunc
}

// CacheItem represents an item in the cache with LRU links
type CacheItem struct {
	Value      any
	Expiration int64
	key        string
	prev       *CacheItem
	next       *CacheItem
}

// NewCache creates a new LRU Cache. A non-positive capacity uses the default.
func NewCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = core.CacheDefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &LRUCache{
		capacity: capacity,
		items:    make(map[string]*CacheItem),
		ctx:      ctx,
		cancel:   cancel,
	}

	c.head = &CacheItem{}
	c.tail = &CacheItem{}
	c.head.next = c.tail
	c.tail.prev = c.head

	go c.startCleanupWorker()
	return c
}

func (c *LRUCache) startCleanupWorker() {
	ticker := time.NewTicker(core.CacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop terminates the cache cleanup worker goroutine.
func (c *LRUCache) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Set stores a value in the cache with the given TTL.
func (c *LRUCache) Set(key string, value any, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiration := time.Now().Add(duration).UnixNano()
	if item, exists := c.items[key]; exists {
		item.Value = value
		item.Expiration = expiration
		c.moveToFront(item)
		return
	}

	item := &CacheItem{
		Value:      value,
		Expiration: expiration,
		key:        key,
	}

	c.addToFront(item)
	c.items[key] = item

	if len(c.items) > c.capacity {
		c.evict()
	}
}

// Get retrieves a value from the cache, returning false if not found or expired.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}

	if time.Now().UnixNano() > item.Expiration {
		c.remove(item)
		delete(c.items, key)
		return nil, false
	}

	c.moveToFront(item)
	return item.Value, true
}

// Delete removes key if present.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, found := c.items[key]; found {
		c.remove(item)
		delete(c.items, key)
	}
}

// Len returns the number of stored items, expired or not.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache) addToFront(item *CacheItem) {
	item.next = c.head.next
	item.prev = c.head
	c.head.next.prev = item
	c.head.next = item
}

func (c *LRUCache) moveToFront(item *CacheItem) {
	c.remove(item)
	c.addToFront(item)
}

func (c *LRUCache) remove(item *CacheItem) {
	item.prev.next = item.next
	item.next.prev = item.prev
}

func (c *LRUCache) evict() {
	if c.tail.prev == c.head {
		return
	}
	item := c.tail.prev
	c.remove(item)
	delete(c.items, item.key)
}

func (c *LRUCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if now > item.Expiration {
			c.remove(item)
			delete(c.items, key)
		}
	}
}

// Clear clears all cache items
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head
	c.items = make(map[string]*CacheItem)
}

// CacheService holds the parsed tool definitions shared across items and executions.
type CacheService struct {
	tools *LRUCache
}

// NewCacheService creates a new CacheService.
func NewCacheService() *CacheService {
	return &CacheService{
		tools: NewCache(core.CacheDefaultCapacity),
	}
}

// GetTools returns the parsed tool list stored under key.
// The returned slice is shared and must not be modified.
func (cs *CacheService) GetTools(key string) ([]core.ToolDefinition, bool) {
	cached, found := cs.tools.Get(key)
	if !found {
		return nil, false
	}
	tools, ok := cached.([]core.ToolDefinition)
	if !ok {
		cs.tools.Delete(key)
		return nil, false
	}
	return tools, true
}

// SetTools stores a parsed tool list.
func (cs *CacheService) SetTools(key string, tools []core.ToolDefinition) {
	cs.tools.Set(key, tools, core.ToolsParsingCacheTTL)
}

// Get retrieves a value from the tools cache.
func (cs *CacheService) Get(key string) (any, bool) {
	return cs.tools.Get(key)
}

// Set stores a value in the tools cache.
func (cs *CacheService) Set(key string, value any, duration time.Duration) {
	cs.tools.Set(key, value, duration)
}

// Stop terminates the cleanup worker.
func (cs *CacheService) Stop() {
	cs.tools.Stop()
}

// Close stops the cache service and releases resources.
func (cs *CacheService) Close() error {
	cs.Stop()
	return nil
}

// GenerateToolsCacheKey creates a cache key from raw tool specs
func GenerateToolsCacheKey(specs []core.ToolSpec) string {
	h := sha1.New() //nolint:gosec // G401: sha1 for cache keys, not security
	for _, spec := range specs {
		specBytes, err := util.MarshalJSON(spec)
		if err != nil {
			h.Write([]byte(spec.Name))
			h.Write([]byte(spec.Parameters))
			continue
		}
		h.Write(specBytes)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("tools:%s:%s", core.CacheKeyVersion, hex.EncodeToString(h.Sum(nil)))
}

// TruncateCacheKey safely truncates cache key for log display
func TruncateCacheKey(key string, maxLen int) string {
	if len(key) <= maxLen {
		return key
	}
	return key[:maxLen]
}
