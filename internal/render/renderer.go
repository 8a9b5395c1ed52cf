// Package render turns markdown into render artifacts: HTML plus the
// document outline and its link issues. Artifacts are memoized in a shared
// cache keyed by content, file and theme.
package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tino-md/tino/internal/cache"
	"github.com/tino-md/tino/internal/events"
	"github.com/tino-md/tino/internal/links"
	"github.com/tino-md/tino/internal/mdtypes"
	"github.com/tino-md/tino/internal/outline"
)

// Renderer produces render artifacts. It is safe for concurrent use; the
// converter always runs outside any lock.
type Renderer struct {
	conv  Converter
	cache *cache.RenderCache
	bus   *events.Bus

	validateLinks bool

	mu    sync.RWMutex
	theme string

	now func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCache makes the renderer use c instead of a private cache.
func WithCache(c *cache.RenderCache) Option {
	return func(r *Renderer) {
		r.cache = c
	}
}

// WithBus publishes a RenderCompleted event on b after every render.
func WithBus(b *events.Bus) Option {
	return func(r *Renderer) {
		r.bus = b
	}
}

// WithTheme sets the initial theme. Unknown names are ignored.
func WithTheme(name string) Option {
	return func(r *Renderer) {
		if t, ok := LookupTheme(name); ok {
			r.theme = t.Name
		}
	}
}

// WithLinkValidation turns link checks on or off. They are on by default.
func WithLinkValidation(enabled bool) Option {
	return func(r *Renderer) {
		r.validateLinks = enabled
	}
}

// New creates a renderer around conv. A nil conv uses a GoldmarkConverter.
func New(conv Converter, opts ...Option) *Renderer {
	if conv == nil {
		conv = NewGoldmarkConverter()
	}
	r := &Renderer{
		conv:          conv,
		theme:         DefaultTheme,
		validateLinks: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NewRenderCache(cache.DefaultMaxSize, cache.DefaultMaxAge)
	}
	return r
}

// Render renders text with the active theme. filePath may be empty; when
// set, relative links are resolved against its directory.
func (r *Renderer) Render(text, filePath string) (mdtypes.RenderResult, error) {
	return r.RenderTheme(text, filePath, r.Theme())
}

// RenderTheme renders text with the given theme. A cached artifact is
// returned as is, with its original render time. Conversion errors are
// returned unchanged and nothing is cached for them.
func (r *Renderer) RenderTheme(text, filePath, theme string) (mdtypes.RenderResult, error) {
	if result, ok := r.cache.Get(text, filePath, theme); ok {
		r.publish(filePath, theme, result)
		return result, nil
	}

	start := r.now()

	html, err := r.conv.Convert(text, theme)
	if err != nil {
		log.Debug("render failed", "path", filePath, "theme", theme, "error", err)
		return mdtypes.RenderResult{}, err
	}

	headings := outline.Extract(text)
	var issues []mdtypes.ValidationIssue
	if r.validateLinks {
		issues = links.Validate(text, filePath, headings)
	}

	result := mdtypes.RenderResult{
		HTML:         html,
		Outline:      headings,
		Issues:       issues,
		RenderTimeMs: float64(r.now().Sub(start).Microseconds()) / 1000,
	}

	r.cache.Put(text, result, filePath, theme)
	log.Debug("rendered", "path", filePath, "theme", theme, "ms", result.RenderTimeMs, "issues", len(issues))

	r.publish(filePath, theme, result)
	return result, nil
}

func (r *Renderer) publish(filePath, theme string, result mdtypes.RenderResult) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.RenderCompleted{
		FilePath:     filePath,
		Theme:        theme,
		Cached:       result.Cached,
		RenderTimeMs: result.RenderTimeMs,
		Headings:     len(result.Outline),
		Issues:       len(result.Issues),
		Errors:       result.ErrorCount(),
		At:           r.now(),
	})
}

// Theme returns the active theme name.
func (r *Renderer) Theme() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.theme
}

// SetTheme switches the active theme. Cached artifacts for other themes
// stay valid and are served again when their theme comes back.
func (r *Renderer) SetTheme(name string) error {
	t, ok := LookupTheme(name)
	if !ok {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownTheme, name, AvailableThemes())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.theme = t.Name
	return nil
}

// Outline returns the headings of text.
func (r *Renderer) Outline(text string) []mdtypes.Heading {
	return outline.Extract(text)
}

// Validate returns the link issues of text.
func (r *Renderer) Validate(text, filePath string) []mdtypes.ValidationIssue {
	return links.Validate(text, filePath, outline.Extract(text))
}

// FindLinks returns every link in text.
func (r *Renderer) FindLinks(text string) []links.Link {
	return links.Find(text)
}

// TOC returns a markdown table of contents for text.
func (r *Renderer) TOC(text string, maxLevel int) string {
	return outline.GenerateTOC(outline.Extract(text), maxLevel)
}

// Cache returns the cache backing the renderer.
func (r *Renderer) Cache() *cache.RenderCache {
	return r.cache
}

// ClearCache drops every cached artifact.
func (r *Renderer) ClearCache() int {
	return r.cache.Clear()
}

// CacheStats returns statistics of the backing cache.
func (r *Renderer) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// InvalidateFile drops the artifacts of one file, in every theme.
func (r *Renderer) InvalidateFile(filePath string) int {
	return r.cache.Invalidate(cache.WithFilePath(filePath))
}
