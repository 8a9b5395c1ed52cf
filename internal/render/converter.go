package render

import (
	"bytes"
	"fmt"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/tino-md/tino/internal/outline"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter turns markdown into an HTML fragment. Implementations must be
// safe for concurrent use and deterministic for a fixed input and theme.
type Converter interface {
	Convert(text, theme string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(text, theme string) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(text, theme string) (string, error) {
	return f(text, theme)
}

// GoldmarkConverter converts CommonMark with GitHub extensions, footnotes
// and definition lists. Fenced code is highlighted with the theme's chroma
// style, so its output differs per theme.
type GoldmarkConverter struct {
	mu       sync.Mutex
	byTheme  map[string]goldmark.Markdown
	fallback string
}

// NewGoldmarkConverter creates a converter. Engines are built per theme on
// first use.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{
		byTheme:  make(map[string]goldmark.Markdown),
		fallback: DefaultTheme,
	}
}

// Convert renders text. Leading YAML or TOML front matter is not part of
// the output.
func (c *GoldmarkConverter) Convert(text, theme string) (string, error) {
	md := c.engine(theme)

	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))

	var buf bytes.Buffer
	if err := md.Convert(StripFrontMatter(text), &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return buf.String(), nil
}

func (c *GoldmarkConverter) engine(theme string) goldmark.Markdown {
	t, ok := LookupTheme(theme)
	if !ok {
		t, _ = LookupTheme(c.fallback)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if md, ok := c.byTheme[t.Name]; ok {
		return md
	}
	md := newGoldmark(t.CodeStyle)
	c.byTheme[t.Name] = md
	return md
}

func newGoldmark(codeStyle string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,            // tables, strikethrough, autolinks, task lists
			extension.Footnote,       // [^1]
			extension.DefinitionList, // term\n: definition
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles, exports need no extra stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
}

// StripFrontMatter returns text without a leading front matter block. Text
// whose leading block does not parse as front matter is returned unchanged.
func StripFrontMatter(text string) []byte {
	body, _, _ := outline.SplitFrontMatter(text)
	return []byte(body)
}

// headingIDs gives goldmark's heading anchors the same ids the outline
// reports, so fragment links that validate also resolve in the HTML.
type headingIDs struct {
	set *outline.IDSet
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{set: outline.NewIDSet()}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.set.Unique(outline.Slug(string(value))))
}

func (h *headingIDs) Put(value []byte) {
	h.set.Reserve(string(value))
}
