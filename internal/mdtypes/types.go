// Package mdtypes contains the values shared by the outline, link, cache and
// render packages. It exists to break import cycles between them.
package mdtypes

import "slices"

// Heading is a single heading found in a markdown document.
type Heading struct {
	Level      int    `json:"level" yaml:"level"` // 1-6
	Text       string `json:"text" yaml:"text"`
	ID         string `json:"id" yaml:"id"`
	LineNumber int    `json:"line_number" yaml:"line_number"` // 1-based
}

// IssueType classifies a validation issue.
type IssueType string

const (
	// IssueBrokenLink marks a local link whose target is missing or unusable.
	IssueBrokenLink IssueType = "broken_link"

	// IssueBrokenFragment marks a #fragment that matches no heading.
	IssueBrokenFragment IssueType = "broken_fragment"

	// IssueBrokenReference marks a reference link with no definition.
	IssueBrokenReference IssueType = "broken_reference"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a problem found while validating a document. Issues are
// data; they never abort a render.
type ValidationIssue struct {
	Type       IssueType `json:"type" yaml:"type"`
	Message    string    `json:"message" yaml:"message"`
	LineNumber int       `json:"line_number" yaml:"line_number"`
	Column     int       `json:"column" yaml:"column"`
	Severity   Severity  `json:"severity" yaml:"severity"`
}

// RenderResult is the artifact of one render pass.
type RenderResult struct {
	HTML         string
	Outline      []Heading
	Issues       []ValidationIssue
	RenderTimeMs float64
	// Cached is true only on copies handed out by the render cache.
	Cached bool
}

// Clone returns a deep copy of r. Headings and issues are plain values, so
// copying the slices is enough to make the copy independent.
func (r RenderResult) Clone() RenderResult {
	r.Outline = slices.Clone(r.Outline)
	r.Issues = slices.Clone(r.Issues)
	return r
}

// ErrorCount returns the number of issues with error severity.
func (r RenderResult) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}
