package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/tino-md/tino/internal/mdtypes"
)

// headingLines maps every heading to the line of rendered that shows it, or
// -1 when the heading cannot be found. Headings are matched in order, so
// repeated titles map to successive lines.
func headingLines(rendered string, headings []mdtypes.Heading) []int {
	lines := strings.Split(ansi.Strip(rendered), "\n")
	out := make([]int, len(headings))

	next := 0
	for i, h := range headings {
		out[i] = -1
		if h.Text == "" {
			continue
		}
		for j := next; j < len(lines); j++ {
			if strings.Contains(lines[j], h.Text) {
				out[i] = j
				next = j + 1
				break
			}
		}
	}
	return out
}

func localDir(path string) string {
	return filepath.Dir(path)
}

// sameFile compares two paths after cleaning and making them absolute.
func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
