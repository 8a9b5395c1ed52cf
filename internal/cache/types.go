package cache

import (
	"time"

	"github.com/tino-md/tino/internal/mdtypes"
)

const (
	// DefaultMaxSize is the entry ceiling used when none is configured.
	DefaultMaxSize = 100

	// DefaultMaxAge is the TTL used by the renderer when none is configured.
	DefaultMaxAge = 5 * time.Minute
)

// Stats holds cache performance metrics.
type Stats struct {
	// Current state
	Size    int // Number of entries
	MaxSize int // Entry ceiling

	// Cumulative counters
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64

	// Derived metrics
	HitRatio        float64 // hits / (hits + misses), 0 with no requests
	Utilization     float64 // size / max size
	AvgAccessCount  float64
	AvgRenderTimeMs float64
}

// SizeInfo describes how full the cache is.
type SizeInfo struct {
	Current   int
	Max       int
	Available int
}

// EntryInfo describes one cached entry without exposing its artifact.
type EntryInfo struct {
	ContentHash  string // shortened, for display
	FilePath     string
	Theme        string
	AccessCount  int64
	RenderTimeMs float64
	Age          time.Duration
	LastAccess   time.Time
}

// entry is a cached artifact plus its bookkeeping.
type entry struct {
	key        Key
	result     mdtypes.RenderResult
	createdAt  time.Time
	lastAccess time.Time
	hits       int64
}
