package cache

import (
	"strings"
	"sync"
	"testing"
	"time"

	"longcatnode/internal/core"
)

func TestLRUCache_BasicSetGet(t *testing.T) {
	cache := NewCache(0)
	defer cache.Stop()
	cache.Set("key1", "value1", 1*time.Hour)
	value, found := cache.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if value != "value1" {
		t.Errorf("Expected 'value1', got '%v'", value)
	}
	if cache.capacity != core.CacheDefaultCapacity {
		t.Errorf("非正容量应使用默认值，实际 %d", cache.capacity)
	}
}

func TestLRUCache_GetNonExistent(t *testing.T) {
	cache := NewCache(4)
	defer cache.Stop()
	if _, found := cache.Get("nonexistent"); found {
		t.Error("Should not find nonexistent key")
	}
}

func TestLRUCache_Expiration(t *testing.T) {
	cache := NewCache(4)
	defer cache.Stop()
	cache.Set("key", "value", 50*time.Millisecond)
	if _, found := cache.Get("key"); !found {
		t.Error("Key should be found immediately after set")
	}
	time.Sleep(80 * time.Millisecond)
	if _, found := cache.Get("key"); found {
		t.Error("Key should be expired")
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewCache(2)
	defer cache.Stop()
	cache.Set("key1", "value1", time.Hour)
	cache.Set("key2", "value2", time.Hour)
	cache.Set("key3", "value3", time.Hour)
	if _, found := cache.Get("key1"); found {
		t.Error("key1 should be evicted")
	}
	if cache.Len() != 2 {
		t.Errorf("期望2个元素，实际 %d", cache.Len())
	}
}

func TestLRUCache_LRUOrder(t *testing.T) {
	cache := NewCache(2)
	defer cache.Stop()
	cache.Set("key1", "value1", time.Hour)
	cache.Set("key2", "value2", time.Hour)
	cache.Get("key1")
	cache.Set("key3", "value3", time.Hour)
	if _, found := cache.Get("key1"); !found {
		t.Error("最近访问的key1不应被淘汰")
	}
	if _, found := cache.Get("key2"); found {
		t.Error("key2应被淘汰")
	}
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	cache := NewCache(2)
	defer cache.Stop()
	cache.Set("key", "old", time.Hour)
	cache.Set("key", "new", time.Hour)
	value, _ := cache.Get("key")
	if value != "new" {
		t.Errorf("期望更新后的值，实际 %v", value)
	}
	if cache.Len() != 1 {
		t.Errorf("更新不应新增元素，实际 %d", cache.Len())
	}
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	cache := NewCache(4)
	defer cache.Stop()
	cache.Set("a", 1, time.Hour)
	cache.Set("b", 2, time.Hour)
	cache.Delete("a")
	cache.Delete("missing")
	if _, found := cache.Get("a"); found {
		t.Error("删除后不应找到a")
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("清空后应为0，实际 %d", cache.Len())
	}
	cache.Set("c", 3, time.Hour)
	if _, found := cache.Get("c"); !found {
		t.Error("清空后应仍可写入")
	}
}

func TestLRUCache_CleanupExpired(t *testing.T) {
	cache := NewCache(4)
	defer cache.Stop()
	cache.Set("expired", 1, -time.Second)
	cache.Set("alive", 2, time.Hour)
	cache.cleanupExpired()
	if cache.Len() != 1 {
		t.Errorf("清理后应剩1个元素，实际 %d", cache.Len())
	}
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(50)
	defer cache.Stop()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (n+j)%26))
				cache.Set(key, j, time.Hour)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if cache.Len() > 50 {
		t.Errorf("元素数量不应超过容量，实际 %d", cache.Len())
	}
}

func TestCacheService_Tools(t *testing.T) {
	cs := NewCacheService()
	defer func() { _ = cs.Close() }()

	tools := []core.ToolDefinition{{Name: "get_weather", Parameters: map[string]any{"type": "object"}}}
	cs.SetTools("k", tools)

	got, found := cs.GetTools("k")
	if !found {
		t.Fatal("应命中缓存")
	}
	if len(got) != 1 || got[0].Name != "get_weather" {
		t.Errorf("缓存内容不正确: %+v", got)
	}

	cs.Set("wrong", "not tools", time.Hour)
	if _, found := cs.GetTools("wrong"); found {
		t.Error("类型不匹配时不应命中")
	}
	if _, found := cs.Get("wrong"); found {
		t.Error("类型不匹配的条目应被删除")
	}
}

func TestGenerateToolsCacheKey(t *testing.T) {
	a := []core.ToolSpec{{Name: "a", Parameters: `{"type":"object"}`}}
	b := []core.ToolSpec{{Name: "a", Parameters: `{"type":"string"}`}}

	keyA := GenerateToolsCacheKey(a)
	if keyA != GenerateToolsCacheKey(a) {
		t.Error("相同输入应生成相同的key")
	}
	if keyA == GenerateToolsCacheKey(b) {
		t.Error("不同schema应生成不同的key")
	}
	if !strings.HasPrefix(keyA, "tools:"+core.CacheKeyVersion+":") {
		t.Errorf("key前缀不正确: %s", keyA)
	}
	if GenerateToolsCacheKey(nil) == keyA {
		t.Error("空列表的key不应与非空列表相同")
	}
}

func TestTruncateCacheKey(t *testing.T) {
	if got := TruncateCacheKey("abcdef", 3); got != "abc" {
		t.Errorf("期望 abc，实际 %s", got)
	}
	if got := TruncateCacheKey("ab", 3); got != "ab" {
		t.Errorf("期望 ab，实际 %s", got)
	}
}
