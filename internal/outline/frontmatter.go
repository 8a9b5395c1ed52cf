package outline

import (
	"strings"

	"github.com/adrg/frontmatter"
)

// SplitFrontMatter separates a leading YAML, TOML or JSON front matter block
// from content. skipped is the number of lines the block occupies. A block
// that does not parse into at least one key is not front matter: a thematic
// break followed by a later "---" stays part of the body.
func SplitFrontMatter(content string) (body string, skipped int, ok bool) {
	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil || len(meta) == 0 {
		return content, 0, false
	}

	consumed := content[:len(content)-len(rest)]
	skipped = strings.Count(consumed, "\n")
	if !strings.HasSuffix(consumed, "\n") {
		skipped++
	}
	return string(rest), skipped, true
}
