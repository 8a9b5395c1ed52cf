package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tino-md/tino/internal/mdtypes"
)

// resetFlags puts every flag back to its default so commands can run more
// than once in a test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const outlineDoc = "# A\n\ntext\n\n## B\n\n# C\n"

func TestOutlineCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.md", outlineDoc)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"tree", []string{"outline", path}, []string{"A #a L1", "  B #b L5", "C #c L7"}},
		{"toc", []string{"outline", "--toc", path}, []string{"# Table of Contents", "- [A](#a)\n  - [B](#b)\n- [C](#c)"}},
		{"yaml", []string{"outline", "-f", "yaml", path}, []string{"text: A", "children:", "text: B", "line_number: 7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestOutlineCommandJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.md", outlineDoc)

	tests := []struct {
		name         string
		args         []string
		wantChildren int
	}{
		{"all levels", []string{"outline", "--format", "json", path}, 1},
		{"top level only", []string{"outline", "--format", "json", "--max-level", "1", path}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			var roots []struct {
				mdtypes.Heading
				Children []json.RawMessage `json:"children"`
			}
			if err := json.Unmarshal([]byte(out), &roots); err != nil {
				t.Fatalf("invalid json: %v\n%s", err, out)
			}
			if len(roots) != 2 || roots[0].Text != "A" || roots[1].ID != "c" {
				t.Fatalf("unexpected roots: %+v", roots)
			}
			if got := len(roots[0].Children); got != tt.wantChildren {
				t.Errorf("got %d children, want %d", got, tt.wantChildren)
			}
		})
	}
}

func TestOutlineCommandBadFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.md", outlineDoc)
	if _, err := runCmd(t, "outline", "-f", "xml", path); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestCheckCommand(t *testing.T) {
	t.Run("broken links", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "index.md", "# Index\n\nSee [guide](guide.md) and [gone](missing.md).\n")
		writeFile(t, dir, "guide.md", "# Guide\n\n[up](#nowhere)\n")

		out, err := runCmd(t, "check", dir)
		if !errors.Is(err, errIssuesFound) {
			t.Fatalf("got error %v, want errIssuesFound", err)
		}
		for _, want := range []string{"File not found", "#nowhere", "Checked 2 files: 1 error, 1 warning"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("clean", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "# A\n\n[b](b.md) [top](#a)\n")
		writeFile(t, dir, "b.md", "# B\n")

		out, err := runCmd(t, "check", dir)
		if err != nil {
			t.Fatalf("unexpected error %v:\n%s", err, out)
		}
		if !strings.Contains(out, "0 errors, 0 warnings") {
			t.Errorf("unexpected summary:\n%s", out)
		}
	})

	t.Run("strict", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "a.md", "# A\n\n[x](#y)\n")

		if _, err := runCmd(t, "check", path); err != nil {
			t.Fatalf("warnings alone should pass: %v", err)
		}
		if _, err := runCmd(t, "check", "--strict", path); !errors.Is(err, errIssuesFound) {
			t.Errorf("got %v, want errIssuesFound with --strict", err)
		}
	})
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "# Hello\n\nSome *text*.\n")

	t.Run("standalone", func(t *testing.T) {
		out := filepath.Join(dir, "page.html")
		if _, err := runCmd(t, "export", "-o", out, path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		html := string(data)
		for _, want := range []string{"<!DOCTYPE html>", "<title>Hello</title>", "<style>", `id="hello"`} {
			if !strings.Contains(html, want) {
				t.Errorf("export missing %q", want)
			}
		}
	})

	t.Run("fragment", func(t *testing.T) {
		out := filepath.Join(dir, "fragment.html")
		if _, err := runCmd(t, "export", "--fragment", "-o", out, path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "<html") || !strings.Contains(string(data), "<em>text</em>") {
			t.Errorf("unexpected fragment:\n%s", data)
		}
	})

	t.Run("compressed", func(t *testing.T) {
		out := filepath.Join(dir, "packed.html")
		msg, err := runCmd(t, "export", "--compress", "-o", out, path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(msg, "packed.html.zst") {
			t.Errorf("output should name the .zst file: %s", msg)
		}

		f, err := os.Open(out + ".zst")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close() //nolint:errcheck

		dec, err := zstd.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		defer dec.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(dec); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "<title>Hello</title>") {
			t.Error("decompressed export is not the document")
		}
	})
}

func TestExportPath(t *testing.T) {
	tests := []struct {
		doc, output string
		compress    bool
		want        string
	}{
		{"/docs/guide.md", "", false, "guide.html"},
		{"/docs/guide.markdown", "", true, "guide.html.zst"},
		{"", "", false, "document.html"},
		{"/docs/guide.md", "out/site.html", false, "out/site.html"},
		{"/docs/guide.md", "site.html.zst", true, "site.html.zst"},
	}
	for _, tt := range tests {
		if got := exportPath(tt.doc, tt.output, tt.compress); got != tt.want {
			t.Errorf("exportPath(%q, %q, %v) = %q, want %q", tt.doc, tt.output, tt.compress, got, tt.want)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.md", "# Title\n\nOne two three.\n\nFour five.\n")

	out, err := runCmd(t, "stats", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Words", "Encoding", "utf-8", "Headings", "Cold render", "(from cache)", "1/100 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestDocumentFromArg(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hidden/README.md", "# Hidden\n")
	readme := writeFile(t, dir, "sub/README.md", "# Readme\n")

	doc, err := documentFromArg(dir)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != readme || doc.Content != "# Readme\n" {
		t.Errorf("got %+v", doc)
	}

	if _, err := documentFromArg(t.TempDir()); err == nil {
		t.Error("expected an error for a directory without a README")
	}
}

func TestFormatIssue(t *testing.T) {
	issue := mdtypes.ValidationIssue{
		Type:       mdtypes.IssueBrokenReference,
		Message:    "Undefined reference: x",
		LineNumber: 3,
		Column:     5,
		Severity:   mdtypes.SeverityError,
	}
	got := formatIssue("doc.md", issue)
	for _, want := range []string{"doc.md:3:5:", "error", "Undefined reference: x", "broken_reference"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q missing %q", got, want)
		}
	}
}
