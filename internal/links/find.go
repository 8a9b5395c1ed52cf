// Package links discovers the links of a markdown document and checks them
// against the filesystem and the document's own outline.
//
// Discovery is pattern based, line by line. Malformed syntax is never an
// error: anything that does not match a pattern is simply not a link.
package links

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tino-md/tino/internal/outline"
)

// Type is the syntactic family of a link.
type Type string

const (
	TypeInline    Type = "inline"
	TypeReference Type = "reference"
	TypeAutolink  Type = "autolink"
)

// Link is one link found in a document.
type Link struct {
	Type      Type   `json:"type" yaml:"type"`
	Text      string `json:"text" yaml:"text"`
	URL       string `json:"url" yaml:"url"`                                 // empty when absent or unresolved
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"` // reference links only
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"` // of the opening bracket or angle
	Raw       string `json:"raw" yaml:"raw"`
}

var (
	inlineRe     = regexp.MustCompile(`\[([^\]]*)\]\(\s*(<[^>]*>|[^)\s]*)(?:\s+(?:"[^"]*"|'[^']*'))?\s*\)`)
	referenceRe  = regexp.MustCompile(`\[([^\]]*)\]\[([^\]]*)\]`)
	autolinkRe   = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9+.\-]{1,31}:[^\s<>]*)>`)
	definitionRe = regexp.MustCompile(`^\s{0,3}\[([^\]]+)\]:\s*(?:<([^>]*)>|(\S+))(?:\s+(?:"[^"]*"|'[^']*'|\([^)]*\)))?\s*$`)
)

// Find returns every link in content in line order. Within a line, inline
// links come first, then reference links, then autolinks. Reference links
// are resolved against the definitions found anywhere in content. Fenced
// code blocks are skipped.
func Find(content string) []Link {
	lines := strings.Split(content, "\n")
	defs := definitions(lines)

	var out []Link
	for i, line := range proseLines(lines) {
		if line == "" || definitionRe.MatchString(line) {
			continue
		}
		lineNum := i + 1

		for _, m := range inlineRe.FindAllStringSubmatchIndex(line, -1) {
			url := line[m[4]:m[5]]
			url = strings.TrimSuffix(strings.TrimPrefix(url, "<"), ">")
			out = append(out, Link{
				Type:   TypeInline,
				Text:   line[m[2]:m[3]],
				URL:    url,
				Line:   lineNum,
				Column: column(line, m[0]),
				Raw:    line[m[0]:m[1]],
			})
		}

		for _, m := range referenceRe.FindAllStringSubmatchIndex(line, -1) {
			text := line[m[2]:m[3]]
			label := line[m[4]:m[5]]
			if strings.TrimSpace(label) == "" {
				label = text
			}
			out = append(out, Link{
				Type:      TypeReference,
				Text:      text,
				URL:       defs[normalizeLabel(label)],
				Reference: label,
				Line:      lineNum,
				Column:    column(line, m[0]),
				Raw:       line[m[0]:m[1]],
			})
		}

		for _, m := range autolinkRe.FindAllStringSubmatchIndex(line, -1) {
			url := line[m[2]:m[3]]
			out = append(out, Link{
				Type:   TypeAutolink,
				Text:   url,
				URL:    url,
				Line:   lineNum,
				Column: column(line, m[0]),
				Raw:    line[m[0]:m[1]],
			})
		}
	}

	return out
}

// proseLines returns lines with carriage returns trimmed and the lines of
// fenced code blocks, fences included, blanked out. Indexes still match the
// input.
func proseLines(lines []string) []string {
	out := make([]string, len(lines))
	var fence string
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if outline.ClosesFence(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := outline.OpeningFence(trimmed); f != "" {
			fence = f
			continue
		}
		out[i] = line
	}
	return out
}

// Definitions returns the reference definition table of content, keyed by
// lowercased label. A label defined twice keeps its last definition.
func Definitions(content string) map[string]string {
	return definitions(strings.Split(content, "\n"))
}

func definitions(lines []string) map[string]string {
	defs := make(map[string]string)
	for _, line := range proseLines(lines) {
		m := definitionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		url := m[3]
		if url == "" {
			url = m[2]
		}
		defs[normalizeLabel(m[1])] = url
	}
	return defs
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// column converts a byte offset into a 1-based character column.
func column(line string, offset int) int {
	return utf8.RuneCountInString(line[:offset]) + 1
}
