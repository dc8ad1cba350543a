// Package cache provides a generic LRU cache.
//
// Cache[K, V] is thread-safe and bounded by a hard capacity. Entries are
// threaded onto an intrusive recency list so Get, Set and eviction are O(1).
// An optional eviction callback lets owners release resources held by the
// evicted value.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// The material resolver uses it to memoize resolved state bundles.
package cache
