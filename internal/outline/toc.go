package outline

import (
	"strings"

	"github.com/tino-md/tino/internal/mdtypes"
)

// MaxLevel is the deepest heading level.
const MaxLevel = 6

// GenerateTOC renders headings up to maxLevel as a nested markdown list under
// a "Table of Contents" title. Indentation is relative to the shallowest
// included heading. A maxLevel of zero or less includes every level.
func GenerateTOC(headings []mdtypes.Heading, maxLevel int) string {
	if maxLevel <= 0 || maxLevel > MaxLevel {
		maxLevel = MaxLevel
	}

	included := Filter(headings, maxLevel)
	if len(included) == 0 {
		return ""
	}

	minLevel := included[0].Level
	for _, h := range included[1:] {
		minLevel = min(minLevel, h.Level)
	}

	lines := make([]string, 0, len(included)+1)
	lines = append(lines, "# Table of Contents\n")
	for _, h := range included {
		indent := strings.Repeat("  ", h.Level-minLevel)
		lines = append(lines, indent+"- ["+h.Text+"](#"+h.ID+")")
	}
	return strings.Join(lines, "\n")
}

// Filter returns the headings at or above maxLevel.
func Filter(headings []mdtypes.Heading, maxLevel int) []mdtypes.Heading {
	var out []mdtypes.Heading
	for _, h := range headings {
		if h.Level <= maxLevel {
			out = append(out, h)
		}
	}
	return out
}

// Node is a heading with the headings nested beneath it.
type Node struct {
	mdtypes.Heading `yaml:",inline"`
	Children        []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Hierarchy nests a flat heading list into a forest. A heading becomes the
// child of the closest preceding heading with a lower level.
func Hierarchy(headings []mdtypes.Heading) []*Node {
	var roots []*Node
	var stack []*Node

	for _, h := range headings {
		n := &Node{Heading: h}
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, n)
	}
	return roots
}
