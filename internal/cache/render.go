package cache

import (
	"container/list"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tino-md/tino/internal/mdtypes"
)

// RenderCache memoizes render artifacts with LRU eviction and an optional
// maximum age. It is safe for concurrent use; every operation holds one mutex
// for in-memory bookkeeping only.
type RenderCache struct {
	maxSize int
	maxAge  time.Duration // zero means entries never expire

	// LRU implementation, front is most recently used
	items    map[Key]*list.Element
	eviction *list.List

	mu sync.Mutex

	hits          int64
	misses        int64
	evictions     int64
	invalidations int64

	now func() time.Time
}

// NewRenderCache creates a cache holding at most maxSize entries, each valid
// for maxAge. A maxSize below one falls back to DefaultMaxSize and a zero
// maxAge disables expiry.
func NewRenderCache(maxSize int, maxAge time.Duration) *RenderCache {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &RenderCache{
		maxSize:  maxSize,
		maxAge:   maxAge,
		items:    make(map[Key]*list.Element),
		eviction: list.New(),
		now:      time.Now,
	}
}

// Get returns a copy of the artifact cached for the request, with Cached set.
func (c *RenderCache) Get(content, filePath, theme string) (mdtypes.RenderResult, bool) {
	key := NewKey(content, filePath, theme)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return mdtypes.RenderResult{}, false
	}

	now := c.now()
	e := elem.Value.(*entry)
	if c.expired(e, now) {
		c.removeElement(elem)
		c.invalidations++
		c.misses++
		log.Debug("render cache entry expired", "hash", key.ContentHash[:8], "age", now.Sub(e.createdAt))
		return mdtypes.RenderResult{}, false
	}

	c.eviction.MoveToFront(elem)
	e.hits++
	e.lastAccess = now
	c.hits++

	result := e.result.Clone()
	result.Cached = true
	return result, true
}

// Put stores result for the request. An existing entry for the same key is
// replaced and starts over with a single access.
func (c *RenderCache) Put(content string, result mdtypes.RenderResult, filePath, theme string) {
	key := NewKey(content, filePath, theme)
	stored := result.Clone()
	stored.Cached = false

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	now := c.now()
	c.items[key] = c.eviction.PushFront(&entry{
		key:        key,
		result:     stored,
		createdAt:  now,
		lastAccess: now,
		hits:       1,
	})

	c.evictOverflow()
}

// Invalidate removes the entries matching every given filter and returns how
// many were removed. Without filters the whole cache is cleared.
func (c *RenderCache) Invalidate(opts ...FilterOption) int {
	var f filter
	for _, opt := range opts {
		opt(&f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f.empty() {
		return c.clearLocked()
	}

	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if f.matches(elem.Value.(*entry).key) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	c.invalidations += int64(removed)
	return removed
}

// Clear removes every entry. Each removal counts as an invalidation.
func (c *RenderCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.clearLocked()
}

// CleanupExpired removes every entry older than the maximum age.
func (c *RenderCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxAge == 0 {
		return 0
	}

	now := c.now()
	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry), now) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	c.invalidations += int64(removed)
	if removed > 0 {
		log.Debug("render cache cleanup", "removed", removed)
	}
	return removed
}

// Resize changes the entry ceiling, evicting least recently used entries
// when the cache is now over it.
func (c *RenderCache) Resize(maxSize int) {
	if maxSize < 1 {
		maxSize = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSize = maxSize
	c.evictOverflow()
}

// Len returns the number of entries, expired ones included.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.eviction.Len()
}

// MaxAge returns the configured time to live.
func (c *RenderCache) MaxAge() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.maxAge
}

// Stats returns cache statistics.
func (c *RenderCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:          c.eviction.Len(),
		MaxSize:       c.maxSize,
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Invalidations: c.invalidations,
		Utilization:   float64(c.eviction.Len()) / float64(c.maxSize),
	}

	if total := c.hits + c.misses; total > 0 {
		stats.HitRatio = float64(c.hits) / float64(total)
	}

	if n := c.eviction.Len(); n > 0 {
		var accesses int64
		var renderTime float64
		for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
			e := elem.Value.(*entry)
			accesses += e.hits
			renderTime += e.result.RenderTimeMs
		}
		stats.AvgAccessCount = float64(accesses) / float64(n)
		stats.AvgRenderTimeMs = renderTime / float64(n)
	}

	return stats
}

// SizeInfo returns the current and maximum entry counts.
func (c *RenderCache) SizeInfo() SizeInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SizeInfo{
		Current:   c.eviction.Len(),
		Max:       c.maxSize,
		Available: max(c.maxSize-c.eviction.Len(), 0),
	}
}

// MostAccessed returns up to limit entries ordered by access count, most
// recently used first among equal counts.
func (c *RenderCache) MostAccessed(limit int) []EntryInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entries := make([]*entry, 0, c.eviction.Len())
	for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
		entries = append(entries, elem.Value.(*entry))
	}

	// The list is already in recency order, so a stable sort keeps the
	// most recently used entry first within a tie.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].hits != entries[j].hits {
			return entries[i].hits > entries[j].hits
		}
		return entries[i].lastAccess.After(entries[j].lastAccess)
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	infos := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, EntryInfo{
			ContentHash:  e.key.ContentHash[:8] + "...",
			FilePath:     e.key.FilePath,
			Theme:        e.key.Theme,
			AccessCount:  e.hits,
			RenderTimeMs: e.result.RenderTimeMs,
			Age:          now.Sub(e.createdAt),
			LastAccess:   e.lastAccess,
		})
	}
	return infos
}

// expired must be called with the lock held.
func (c *RenderCache) expired(e *entry, now time.Time) bool {
	return c.maxAge > 0 && now.Sub(e.createdAt) > c.maxAge
}

// evictOverflow removes least recently used entries until the cache fits
// (must be called with lock held).
func (c *RenderCache) evictOverflow() {
	for c.eviction.Len() > c.maxSize {
		elem := c.eviction.Back()
		e := elem.Value.(*entry)
		c.removeElement(elem)
		c.evictions++
		log.Debug("render cache eviction", "hash", e.key.ContentHash[:8], "path", e.key.FilePath, "theme", e.key.Theme)
	}
}

// clearLocked must be called with the lock held.
func (c *RenderCache) clearLocked() int {
	n := c.eviction.Len()
	c.items = make(map[Key]*list.Element)
	c.eviction.Init()
	c.invalidations += int64(n)
	return n
}

// removeElement must be called with the lock held.
func (c *RenderCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
