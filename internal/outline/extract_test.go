package outline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tino-md/tino/internal/mdtypes"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []mdtypes.Heading
	}{
		{
			name:    "atx levels",
			content: "# Title\n\nSome text\n\n## Section\n### Sub ###",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Title", ID: "title", LineNumber: 1},
				{Level: 2, Text: "Section", ID: "section", LineNumber: 5},
				{Level: 3, Text: "Sub", ID: "sub", LineNumber: 6},
			},
		},
		{
			name:    "setext",
			content: "Title\n=====\n\nSub\n---",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Title", ID: "title", LineNumber: 1},
				{Level: 2, Text: "Sub", ID: "sub", LineNumber: 4},
			},
		},
		{
			name:    "inline formatting stripped",
			content: "# **Bold** and `code` [link](http://example.com)",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Bold and code link", ID: "bold-and-code-link", LineNumber: 1},
			},
		},
		{
			name:    "fenced code skipped",
			content: "```sh\n# not a heading\n```\n# Real",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Real", ID: "real", LineNumber: 4},
			},
		},
		{
			name:    "tilde fence skipped",
			content: "~~~\n## hidden\n~~~\n## Shown",
			want: []mdtypes.Heading{
				{Level: 2, Text: "Shown", ID: "shown", LineNumber: 4},
			},
		},
		{
			name:    "front matter skipped",
			content: "---\ntitle: x\n---\n# Real",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Real", ID: "real", LineNumber: 4},
			},
		},
		{
			name:    "thematic breaks are not front matter",
			content: "---\n# Title\n\nIntro text.\n\n---\n\n## Next",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Title", ID: "title", LineNumber: 2},
				{Level: 2, Text: "Next", ID: "next", LineNumber: 8},
			},
		},
		{
			name:    "toml front matter skipped",
			content: "+++\ntitle = \"x\"\n+++\n# Real",
			want: []mdtypes.Heading{
				{Level: 1, Text: "Real", ID: "real", LineNumber: 4},
			},
		},
		{
			name:    "empty heading",
			content: "#\n# ##",
			want: []mdtypes.Heading{
				{Level: 1, Text: FallbackID, ID: FallbackID, LineNumber: 1},
				{Level: 1, Text: FallbackID, ID: FallbackID + "-2", LineNumber: 2},
			},
		},
		{
			name:    "hash without space is text",
			content: "#hashtag\n####### seven",
			want:    nil,
		},
		{
			name:    "crlf line endings",
			content: "# One\r\n## Two\r\n",
			want: []mdtypes.Heading{
				{Level: 1, Text: "One", ID: "one", LineNumber: 1},
				{Level: 2, Text: "Two", ID: "two", LineNumber: 2},
			},
		},
		{
			name:    "no headings",
			content: "just a paragraph\n\nand another",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d headings, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("heading %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtract_DuplicateIDs(t *testing.T) {
	const n = 5
	var b strings.Builder
	for range n {
		b.WriteString("## Intro\n\ntext\n\n")
	}

	headings := Extract(b.String())
	if len(headings) != n {
		t.Fatalf("got %d headings, want %d", len(headings), n)
	}
	if headings[0].ID != "intro" {
		t.Errorf("first id: got %q, want %q", headings[0].ID, "intro")
	}

	seen := make(map[string]bool)
	for i, h := range headings {
		if seen[h.ID] {
			t.Errorf("duplicate id %q", h.ID)
		}
		seen[h.ID] = true
		if i > 0 {
			if want := fmt.Sprintf("intro-%d", i+1); h.ID != want {
				t.Errorf("heading %d: got id %q, want %q", i, h.ID, want)
			}
		}
	}
}

func TestExtract_SuffixAvoidsNaturalIDs(t *testing.T) {
	headings := Extract("# A 2\n# A\n# A")

	want := []string{"a-2", "a", "a-3"}
	for i, h := range headings {
		if h.ID != want[i] {
			t.Errorf("heading %d: got id %q, want %q", i, h.ID, want[i])
		}
	}
}

func TestExtract_LineNumbersIncrease(t *testing.T) {
	content := "# A\ntext\nB\n===\n## C\n```\n# x\n```\n### D\nE\n---\n"
	headings := Extract(content)
	if len(headings) != 5 {
		t.Fatalf("got %d headings, want 5: %+v", len(headings), headings)
	}
	for i := 1; i < len(headings); i++ {
		if headings[i].LineNumber <= headings[i-1].LineNumber {
			t.Errorf("line numbers not increasing: %d then %d", headings[i-1].LineNumber, headings[i].LineNumber)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Version 2.0", "version-2-0"},
		{"Ünïcode Tëst", "ünïcode-tëst"},
		{"--already--slugged--", "already-slugged"},
		{"!!!", FallbackID},
		{"", FallbackID},
	}

	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripInline(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"**bold** text", "bold text"},
		{"*em* text", "em text"},
		{"use `go test`", "use go test"},
		{"see [docs](docs.md)", "see docs"},
		{"![logo](logo.png) Name", "logo Name"},
	}

	for _, tt := range tests {
		if got := StripInline(tt.in); got != tt.want {
			t.Errorf("StripInline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantBody    string
		wantSkipped int
		wantOK      bool
	}{
		{"yaml", "---\ntitle: x\ntags: [a]\n---\n# Body", "# Body", 4, true},
		{"closing line last", "---\ntitle: x\n---", "", 3, true},
		{"no front matter", "# Body\n---\n", "# Body\n---\n", 0, false},
		{"heading between rules", "---\n# Title\n---\nbody", "---\n# Title\n---\nbody", 0, false},
		{"prose between rules", "---\nIntro text.\n---\n", "---\nIntro text.\n---\n", 0, false},
		{"unterminated", "---\ntitle: x\n# Body", "---\ntitle: x\n# Body", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, skipped, ok := SplitFrontMatter(tt.content)
			if body != tt.wantBody || skipped != tt.wantSkipped || ok != tt.wantOK {
				t.Errorf("got (%q, %d, %v), want (%q, %d, %v)",
					body, skipped, ok, tt.wantBody, tt.wantSkipped, tt.wantOK)
			}
		})
	}
}
