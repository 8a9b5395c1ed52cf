package links

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tino-md/tino/internal/mdtypes"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("# x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestValidate_BrokenLink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "existing.md"))

	issues := Validate("[good](existing.md)\n[bad](missing.md)", filepath.Join(dir, "doc.md"), nil)

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	got := issues[0]
	if got.Type != mdtypes.IssueBrokenLink {
		t.Errorf("type: got %q, want %q", got.Type, mdtypes.IssueBrokenLink)
	}
	if got.Severity != mdtypes.SeverityError {
		t.Errorf("severity: got %q, want %q", got.Severity, mdtypes.SeverityError)
	}
	if !strings.Contains(got.Message, "missing.md") {
		t.Errorf("message %q should name missing.md", got.Message)
	}
	if got.LineNumber != 2 || got.Column != 1 {
		t.Errorf("position: got %d:%d, want 2:1", got.LineNumber, got.Column)
	}
}

func TestValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}

	issues := Validate("[dir](sub)", filepath.Join(dir, "doc.md"), nil)
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "directory") {
		t.Fatalf("got %+v, want one directory issue", issues)
	}
}

func TestValidate_Fragments(t *testing.T) {
	headings := []mdtypes.Heading{{Level: 1, Text: "Title", ID: "title", LineNumber: 1}}

	issues := Validate("# Title\n\n[ok](#title)\n[bad](#nope)", "", headings)

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	got := issues[0]
	if got.Type != mdtypes.IssueBrokenFragment || got.Severity != mdtypes.SeverityWarning {
		t.Errorf("got %s/%s, want broken_fragment/warning", got.Type, got.Severity)
	}
	if !strings.Contains(got.Message, "nope") {
		t.Errorf("message %q should name the fragment", got.Message)
	}
	if got.LineNumber != 4 {
		t.Errorf("line: got %d, want 4", got.LineNumber)
	}
}

func TestValidate_Rules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "other.md"))
	base := filepath.Join(dir, "doc.md")

	tests := []struct {
		name    string
		content string
		want    []mdtypes.IssueType
	}{
		{"empty url", "[todo]()", nil},
		{"top of page", "[top](#)", nil},
		{"external ok", "[go](https://go.dev) <https://example.com>", nil},
		{"external malformed", "[bad](http://)", []mdtypes.IssueType{mdtypes.IssueBrokenLink}},
		{"mailto ok", "<mailto:me@example.com>", nil},
		{"mailto malformed", "[mail](mailto:nobody)", []mdtypes.IssueType{mdtypes.IssueBrokenLink}},
		{"path with fragment", "[x](other.md#anything)", nil},
		{"missing path with fragment", "[x](gone.md#a)", []mdtypes.IssueType{mdtypes.IssueBrokenLink}},
		{"path with query", "[x](other.md?raw=1)", nil},
		{"escaped path", "[x](other%2Emd)", nil},
		{"defined reference", "[x][r]\n\n[r]: other.md", nil},
		{"undefined reference", "[x][nowhere]", []mdtypes.IssueType{mdtypes.IssueBrokenReference}},
		{"reference to missing file", "[x][r]\n\n[r]: gone.md", []mdtypes.IssueType{mdtypes.IssueBrokenLink}},
		{"case-insensitive label", "[X][]\n\n[x]: other.md", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.content, base, nil)
			if len(issues) != len(tt.want) {
				t.Fatalf("got %d issues, want %d: %+v", len(issues), len(tt.want), issues)
			}
			for i, issue := range issues {
				if issue.Type != tt.want[i] {
					t.Errorf("issue %d: got %q, want %q", i, issue.Type, tt.want[i])
				}
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"))

	tests := []struct {
		url  string
		want string
	}{
		{"", "Empty URL"},
		{"https://example.com", ""},
		{"https://", "Invalid URL format"},
		{"mailto:x@example.com", ""},
		{"mailto:nobody", "Invalid email format"},
		{"ftp://example.com/file", "Unsupported URL scheme: ftp"},
		{"a.md", ""},
		{"#anything", ""},
		{"b.md", "File not found: b.md"},
		{".", "Link points to directory: ."},
	}

	for _, tt := range tests {
		errs := ValidateURL(tt.url, dir)
		switch {
		case tt.want == "" && len(errs) != 0:
			t.Errorf("ValidateURL(%q) = %v, want none", tt.url, errs)
		case tt.want != "" && (len(errs) != 1 || errs[0] != tt.want):
			t.Errorf("ValidateURL(%q) = %v, want [%s]", tt.url, errs, tt.want)
		}
	}
}

func TestFragmentExists(t *testing.T) {
	headings := []mdtypes.Heading{{ID: "getting-started"}}

	for _, f := range []string{"getting-started", "#getting-started", "Getting-Started"} {
		if !FragmentExists(f, headings) {
			t.Errorf("FragmentExists(%q) = false", f)
		}
	}
	for _, f := range []string{"", "#", "started"} {
		if FragmentExists(f, headings) {
			t.Errorf("FragmentExists(%q) = true", f)
		}
	}
}

func TestSuggestFragments(t *testing.T) {
	headings := []mdtypes.Heading{
		{ID: "installation"},
		{ID: "usage"},
		{ID: "configuration"},
		{ID: "license"},
	}

	got := SuggestFragments("#instalation", headings)
	if len(got) == 0 || got[0] != "installation" {
		t.Errorf("got %v, want installation first", got)
	}

	if got := SuggestFragments("zzz", headings); len(got) != 0 {
		t.Errorf("got %v, want no suggestions", got)
	}

	many := make([]mdtypes.Heading, 10)
	for i := range many {
		many[i] = mdtypes.Heading{ID: "section-" + string(rune('a'+i))}
	}
	if got := SuggestFragments("section", many); len(got) != MaxSuggestions {
		t.Errorf("got %d suggestions, want %d", len(got), MaxSuggestions)
	}
}

func TestValidate_DocumentOrder(t *testing.T) {
	dir := t.TempDir()
	content := "[x][undefined]\n[bad](missing.md)\n<http://>\n```\n[code](missing.md)\n```"

	issues := Validate(content, filepath.Join(dir, "doc.md"), nil)

	want := []struct {
		typ  mdtypes.IssueType
		line int
	}{
		{mdtypes.IssueBrokenReference, 1},
		{mdtypes.IssueBrokenLink, 2},
		{mdtypes.IssueBrokenLink, 3},
	}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, w := range want {
		if issues[i].Type != w.typ || issues[i].LineNumber != w.line {
			t.Errorf("issue %d: got %s on line %d, want %s on line %d",
				i, issues[i].Type, issues[i].LineNumber, w.typ, w.line)
		}
	}
}
