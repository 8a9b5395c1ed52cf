// Package outline derives the heading structure of a markdown document: the
// ordered heading list with stable slug ids, a table of contents, the heading
// tree and line-based navigation helpers.
package outline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/tino-md/tino/internal/mdtypes"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackID is used when a heading's text produces an empty slug.
const FallbackID = "heading"

var (
	atxRe           = regexp.MustCompile(`^(#{1,6})(?:\s+(.*))?$`)
	closingHashesRe = regexp.MustCompile(`\s*#+$`)
	setextH1Re      = regexp.MustCompile(`^=+$`)
	setextH2Re      = regexp.MustCompile(`^-+$`)
	underlineOnlyRe = regexp.MustCompile(`^[=\-*_\s]+$`)

	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inlineLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	codeRe       = regexp.MustCompile("`([^`]+)`")
	boldStarRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderRe  = regexp.MustCompile(`\b__([^_]+)__\b`)
	italStarRe   = regexp.MustCompile(`\*([^*]+)\*`)
	italUnderRe  = regexp.MustCompile(`\b_([^_]+)_\b`)
)

// Extract returns the ATX and setext headings of content in document order.
// Fenced code blocks and a leading front matter block are skipped; line
// numbers still count them.
func Extract(content string) []mdtypes.Heading {
	lines := strings.Split(content, "\n")
	ids := NewIDSet()
	var headings []mdtypes.Heading

	add := func(level int, raw string, lineNum int) {
		text := StripInline(raw)
		if text == "" {
			text = FallbackID
		}
		headings = append(headings, mdtypes.Heading{
			Level:      level,
			Text:       text,
			ID:         ids.Unique(Slug(text)),
			LineNumber: lineNum,
		})
	}

	_, start, _ := SplitFrontMatter(content)
	var fence string

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(strings.TrimRight(lines[i], "\r"))

		if fence != "" {
			if ClosesFence(line, fence) {
				fence = ""
			}
			continue
		}
		if f := OpeningFence(line); f != "" {
			fence = f
			continue
		}

		if m := atxRe.FindStringSubmatch(line); m != nil {
			text := closingHashesRe.ReplaceAllString(strings.TrimSpace(m[2]), "")
			add(len(m[1]), strings.TrimSpace(text), i+1)
			continue
		}

		if line == "" || i+1 >= len(lines) || underlineOnlyRe.MatchString(line) {
			continue
		}

		next := strings.TrimSpace(strings.TrimRight(lines[i+1], "\r"))
		switch {
		case setextH1Re.MatchString(next):
			add(1, line, i+1)
			i++ // the underline is consumed
		case setextH2Re.MatchString(next):
			add(2, line, i+1)
			i++
		}
	}

	return headings
}

// StripInline removes emphasis, inline code and link syntax from heading
// text, keeping the visible words.
func StripInline(text string) string {
	text = imageRe.ReplaceAllString(text, "$1")
	text = inlineLinkRe.ReplaceAllString(text, "$1")
	text = codeRe.ReplaceAllString(text, "$1")
	text = boldStarRe.ReplaceAllString(text, "$1")
	text = boldUnderRe.ReplaceAllString(text, "$1")
	text = italStarRe.ReplaceAllString(text, "$1")
	text = italUnderRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Slug turns heading text into a URL-safe id: lowercase, runs of
// non-alphanumeric characters collapsed into one hyphen, no leading or
// trailing hyphens.
func Slug(text string) string {
	var b strings.Builder
	pendingHyphen := false

	// Casers keep state, so each call gets its own.
	lower := cases.Lower(language.Und)
	for _, r := range lower.String(StripInline(text)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	if b.Len() == 0 {
		return FallbackID
	}
	return b.String()
}

// IDSet hands out ids that are unique within one document. The first use
// of a base id is returned as is; later ones get -2, -3 and so on, skipping
// suffixed ids that are already taken.
type IDSet struct {
	used  map[string]bool
	count map[string]int
}

// NewIDSet returns an empty set.
func NewIDSet() *IDSet {
	return &IDSet{used: make(map[string]bool), count: make(map[string]int)}
}

// Reserve marks id as taken.
func (s *IDSet) Reserve(id string) {
	s.used[id] = true
}

// Unique returns base or the first free suffixed form of it.
func (s *IDSet) Unique(base string) string {
	if !s.used[base] {
		s.used[base] = true
		s.count[base] = 1
		return base
	}
	n := max(s.count[base], 1)
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if !s.used[candidate] {
			s.count[base] = n
			s.used[candidate] = true
			return candidate
		}
	}
}

// OpeningFence returns the fence marker (a run of backticks or tildes) that
// line opens, or "" if line does not start a fenced code block. line must be
// trimmed.
func OpeningFence(line string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, marker) {
			n := len(line) - len(strings.TrimLeft(line, marker[:1]))
			return line[:n]
		}
	}
	return ""
}

// ClosesFence reports whether the trimmed line closes a block opened with
// fence.
func ClosesFence(line, fence string) bool {
	if !strings.HasPrefix(line, fence) {
		return false
	}
	return strings.Trim(line, fence[:1]) == ""
}
