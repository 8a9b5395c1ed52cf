package render

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tino-md/tino/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var supportedFormats = utils.MarkdownExtensions

// SupportedFormats returns the file extensions treated as markdown.
func SupportedFormats() []string {
	return slices.Clone(supportedFormats)
}

// SupportsFormat reports whether ext (with or without the dot, any case)
// is a markdown extension. A full file name is accepted too.
func SupportsFormat(ext string) bool {
	if e := filepath.Ext(ext); e != "" {
		ext = e
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return slices.Contains(supportedFormats, ext)
}

// WordStats counts the words of a document.
type WordStats struct {
	Words                int `json:"words" yaml:"words"`
	Characters           int `json:"characters" yaml:"characters"` // visible text, no whitespace
	CharactersWithSpaces int `json:"characters_with_spaces" yaml:"characters_with_spaces"`
	Paragraphs           int `json:"paragraphs" yaml:"paragraphs"` // blank-line separated blocks
	Lines                int `json:"lines" yaml:"lines"`
}

var plainParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// WordCount counts text after removing markdown syntax. Fenced and indented
// code is not counted as words.
func WordCount(src string) WordStats {
	if src == "" {
		return WordStats{}
	}

	plain := PlainText(src)

	stats := WordStats{
		Words:                len(strings.Fields(plain)),
		CharactersWithSpaces: utf8.RuneCountInString(plain),
		Lines:                strings.Count(strings.TrimSuffix(src, "\n"), "\n") + 1,
	}
	for _, r := range plain {
		if !unicode.IsSpace(r) {
			stats.Characters++
		}
	}
	for _, block := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(block) != "" {
			stats.Paragraphs++
		}
	}
	return stats
}

// PlainText returns the readable text of a markdown document: headings,
// paragraphs, list items, link and image text. Code blocks, front matter
// and markup are dropped; blocks end with a newline.
func PlainText(src string) string {
	source := StripFrontMatter(src)
	doc := plainParser.Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}

		case *ast.String:
			if entering {
				b.Write(node.Value)
			}

		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(source))
			}

		default:
			if !entering && n.Type() == ast.TypeBlock && n.HasChildren() {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
