// Package cache provides the in-memory render cache. Rendered artifacts are
// keyed by document content, originating file and theme, evicted in LRU order
// once the cache is full, and treated as absent once older than the configured
// maximum age.
package cache
