package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key identifies a cache entry. Two requests that differ in content, file or
// theme never share an entry.
type Key struct {
	ContentHash string
	FilePath    string // empty when the document has no file
	Theme       string
}

// NewKey builds the key for a render request.
func NewKey(content, filePath, theme string) Key {
	return Key{
		ContentHash: HashContent(content),
		FilePath:    filePath,
		Theme:       theme,
	}
}

// HashContent returns a fixed-width digest of content.
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:16]) // first 16 bytes are plenty for a key
}

// filter restricts which entries Invalidate removes. A nil field matches
// anything.
type filter struct {
	contentHash *string
	filePath    *string
	theme       *string
}

// FilterOption narrows an invalidation.
type FilterOption func(*filter)

// WithContent matches entries rendered from content.
func WithContent(content string) FilterOption {
	return func(f *filter) {
		h := HashContent(content)
		f.contentHash = &h
	}
}

// WithFilePath matches entries rendered for path. An empty path matches
// entries that were rendered without a file.
func WithFilePath(path string) FilterOption {
	return func(f *filter) {
		f.filePath = &path
	}
}

// WithTheme matches entries rendered with theme.
func WithTheme(theme string) FilterOption {
	return func(f *filter) {
		f.theme = &theme
	}
}

func (f filter) empty() bool {
	return f.contentHash == nil && f.filePath == nil && f.theme == nil
}

func (f filter) matches(k Key) bool {
	if f.contentHash != nil && *f.contentHash != k.ContentHash {
		return false
	}
	if f.filePath != nil && *f.filePath != k.FilePath {
		return false
	}
	if f.theme != nil && *f.theme != k.Theme {
		return false
	}
	return true
}
