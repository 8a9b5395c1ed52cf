package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantEnc string
	}{
		{"utf-8", []byte("# Héllo"), "# Héllo", EncodingUTF8},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "# Hi"...), "# Hi", EncodingUTF8BOM},
		{"utf-16le", []byte{0xFF, 0xFE, '#', 0, ' ', 0, 'A', 0}, "# A", EncodingUTF16LE},
		{"utf-16be", []byte{0xFE, 0xFF, 0, '#', 0, ' ', 0, 'B'}, "# B", EncodingUTF16BE},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, "café", EncodingWindows1252},
		{"empty", nil, "", EncodingUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("content: got %q, want %q", got, tt.want)
			}
			if enc != tt.wantEnc {
				t.Errorf("encoding: got %q, want %q", enc, tt.wantEnc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Doc\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != path || doc.Content != "# Doc\n" || doc.Encoding != EncodingUTF8 {
		t.Errorf("got %+v", doc)
	}

	if _, err := Load(filepath.Join(dir, "notes.txt")); !errors.Is(err, ErrNotMarkdown) {
		t.Errorf("got %v, want ErrNotMarkdown", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not-exist error", err)
	}
}

func TestRead(t *testing.T) {
	doc, err := Read(strings.NewReader("# stdin"), "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "# stdin" || doc.Path != "" {
		t.Errorf("got %+v", doc)
	}
}

func TestFindMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "sub/b.markdown", "sub/c.txt", "d.mkd"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindMarkdownFiles(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(files), files)
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".txt") {
			t.Errorf("non-markdown file found: %s", f)
		}
	}
}
