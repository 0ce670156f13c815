package utils

import (
	"sync"
	"time"
)

// TTLCache 带过期时间的内存缓存，使用 sync.Map 保证并发安全
// 用于记录已注销的 Token（key 为 jti，过期时间与 Token 一致）
type TTLCache struct {
	items sync.Map
}

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration time.Time
}

// NewTTLCache 创建缓存
func NewTTLCache() *TTLCache {
	return &TTLCache{}
}

// Set 设置缓存，expiresAt 之后失效
func (c *TTLCache) Set(key, value string, expiresAt time.Time) {
	c.items.Store(key, cacheItem{value: value, expiration: expiresAt})
}

// Get 获取缓存并验证是否过期
func (c *TTLCache) Get(key string) (string, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)
	if time.Now().After(item.expiration) {
		c.items.Delete(key) // 懒删除
		return "", false
	}
	return item.value, true
}

// Has 是否存在未过期的 key
func (c *TTLCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete 删除缓存
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}

// Purge 清理所有过期条目，返回清理数量
func (c *TTLCache) Purge() int {
	now := time.Now()
	removed := 0
	c.items.Range(func(key, val any) bool {
		if now.After(val.(cacheItem).expiration) {
			c.items.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
