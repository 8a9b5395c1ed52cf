package links

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/tino-md/tino/internal/mdtypes"
)

// MaxSuggestions caps the fragment suggestions returned for a broken link.
const MaxSuggestions = 3

var schemeRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*):`)

// Validate checks every link in content. Local paths are resolved against
// the directory of filePath (the working directory when filePath is empty)
// and same-document fragments against headings.
func Validate(content, filePath string, headings []mdtypes.Heading) []mdtypes.ValidationIssue {
	baseDir := "."
	if filePath != "" {
		baseDir = filepath.Dir(filePath)
	}

	defs := Definitions(content)
	var issues []mdtypes.ValidationIssue

	for _, l := range Find(content) {
		issue, ok := check(l, baseDir, headings, defs)
		if ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

func check(l Link, baseDir string, headings []mdtypes.Heading, defs map[string]string) (mdtypes.ValidationIssue, bool) {
	issue := func(t mdtypes.IssueType, sev mdtypes.Severity, msg string) (mdtypes.ValidationIssue, bool) {
		return mdtypes.ValidationIssue{
			Type:       t,
			Message:    msg,
			LineNumber: l.Line,
			Column:     l.Column,
			Severity:   sev,
		}, true
	}

	if l.Type == TypeReference {
		if _, ok := defs[normalizeLabel(l.Reference)]; !ok {
			return issue(mdtypes.IssueBrokenReference, mdtypes.SeverityError,
				fmt.Sprintf("Undefined reference: %s", l.Reference))
		}
	}

	u := strings.TrimSpace(l.URL)
	switch {
	case u == "", u == "#":
		// placeholder links and links to the top of the page
		return mdtypes.ValidationIssue{}, false

	case strings.HasPrefix(u, "#"):
		fragment := u[1:]
		if FragmentExists(fragment, headings) {
			return mdtypes.ValidationIssue{}, false
		}
		msg := fmt.Sprintf("Fragment link '#%s' does not match any heading", fragment)
		if s := SuggestFragments(fragment, headings); len(s) > 0 {
			if len(s) > 2 {
				s = s[:2]
			}
			msg += fmt.Sprintf(". Did you mean: #%s?", strings.Join(s, ", #"))
		}
		return issue(mdtypes.IssueBrokenFragment, mdtypes.SeverityWarning, msg)

	case schemeRe.MatchString(u):
		if msg := checkExternal(u); msg != "" {
			return issue(mdtypes.IssueBrokenLink, mdtypes.SeverityError, fmt.Sprintf("%s: %s", msg, u))
		}
		return mdtypes.ValidationIssue{}, false

	default:
		// The fragment of a path#fragment link points into another
		// document and is not verified.
		path, _, _ := strings.Cut(u, "#")
		if msg := checkLocal(path, baseDir); msg != "" {
			return issue(mdtypes.IssueBrokenLink, mdtypes.SeverityError, msg)
		}
		return mdtypes.ValidationIssue{}, false
	}
}

// ValidateURL runs the structural checks for a single URL and returns the
// problems found, if any. Relative paths are resolved against baseDir.
func ValidateURL(rawURL, baseDir string) []string {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return []string{"Empty URL"}
	}
	if strings.HasPrefix(u, "#") {
		// fragments need an outline to be checked
		return nil
	}

	m := schemeRe.FindStringSubmatch(u)
	if m == nil {
		path, _, _ := strings.Cut(u, "#")
		if msg := checkLocal(path, baseDir); msg != "" {
			return []string{msg}
		}
		return nil
	}

	switch strings.ToLower(m[1]) {
	case "http", "https", "mailto":
		if msg := checkExternal(u); msg != "" {
			return []string{msg}
		}
		return nil
	default:
		return []string{fmt.Sprintf("Unsupported URL scheme: %s", m[1])}
	}
}

// checkExternal sanity checks a URL with a scheme without touching the
// network. It returns an empty string when the URL looks usable.
func checkExternal(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "Invalid URL format"
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if parsed.Host == "" {
			return "Invalid URL format"
		}
	case "mailto":
		if !strings.Contains(parsed.Opaque, "@") {
			return "Invalid email format"
		}
	default:
		if parsed.Host == "" && parsed.Opaque == "" && parsed.Path == "" {
			return "Invalid URL format"
		}
	}
	return ""
}

// checkLocal stats path relative to baseDir and returns an empty string when
// it is an existing regular file.
func checkLocal(path, baseDir string) string {
	path, _, _ = strings.Cut(path, "?")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if path == "" {
		return ""
	}

	target := filepath.FromSlash(path)
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}

	info, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("File not found: %s", path)
	case err != nil:
		return fmt.Sprintf("Cannot access %s: %v", path, err)
	case info.IsDir():
		return fmt.Sprintf("Link points to directory: %s", path)
	}
	return ""
}

// FragmentExists reports whether fragment names a heading id. The leading
// "#" is optional and the comparison ignores case.
func FragmentExists(fragment string, headings []mdtypes.Heading) bool {
	target := strings.TrimPrefix(fragment, "#")
	if target == "" {
		return false
	}
	for _, h := range headings {
		if strings.EqualFold(h.ID, target) {
			return true
		}
	}
	return false
}

// SuggestFragments returns up to MaxSuggestions heading ids close to an
// unmatched fragment, best match first. Ids that contain the fragment's
// characters in order rank first; the rest are scored by their longest
// shared run and how close their lengths are.
func SuggestFragments(fragment string, headings []mdtypes.Heading) []string {
	target := strings.ToLower(strings.TrimPrefix(fragment, "#"))
	if target == "" || len(headings) == 0 {
		return nil
	}

	ids := make([]string, len(headings))
	for i, h := range headings {
		ids[i] = strings.ToLower(h.ID)
	}

	var out []string
	seen := make(map[int]bool)
	add := func(i int) {
		if !seen[i] && len(out) < MaxSuggestions {
			seen[i] = true
			out = append(out, headings[i].ID)
		}
	}

	for _, m := range fuzzy.Find(target, ids) {
		add(m.Index)
	}

	type scored struct {
		index int
		score int
	}
	var rest []scored
	for i, id := range ids {
		if seen[i] {
			continue
		}
		run := longestCommonRun(target, id)
		if run < 3 && run*2 < min(len(target), len(id)) {
			continue
		}
		diff := len(target) - len(id)
		if diff < 0 {
			diff = -diff
		}
		rest = append(rest, scored{index: i, score: run*2 - diff})
	}
	sort.SliceStable(rest, func(a, b int) bool { return rest[a].score > rest[b].score })

	for _, s := range rest {
		add(s.index)
	}
	return out
}

// longestCommonRun returns the length of the longest substring shared by a
// and b.
func longestCommonRun(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				best = max(best, cur[j])
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
