// Package source loads markdown documents from disk and finds them in
// directory trees.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
	"github.com/tino-md/tino/utils"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrNotMarkdown is returned for files without a markdown extension.
var ErrNotMarkdown = errors.New("not a markdown file")

// Encoding names reported in Document.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

// Document is a loaded markdown file.
type Document struct {
	Path     string
	Content  string
	Encoding string
}

// Load reads a markdown file and decodes it to UTF-8.
func Load(path string) (Document, error) {
	if !utils.IsMarkdownFile(path) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotMarkdown, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("unable to read %s: %w", path, err)
	}

	content, enc, err := Decode(data)
	if err != nil {
		return Document{}, fmt.Errorf("unable to decode %s: %w", path, err)
	}

	log.Debug("loaded document", "path", path, "encoding", enc, "bytes", len(data))
	return Document{Path: path, Content: content, Encoding: enc}, nil
}

// Read decodes a document from r. path is recorded as is and may be empty.
func Read(r io.Reader, path string) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("unable to read input: %w", err)
	}
	content, enc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: path, Content: content, Encoding: enc}, nil
}

// Decode converts raw file bytes to a UTF-8 string and names the encoding
// it found. Byte order marks decide UTF-8 and UTF-16; BOM-less data that is
// not valid UTF-8 is read as Windows-1252.
func Decode(data []byte) (string, string, error) {
	var (
		enc  encoding.Encoding
		name string
	)

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		enc, name = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		enc, name = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), EncodingUTF16BE
	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil
	default:
		enc, name = charmap.Windows1252, EncodingWindows1252
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("invalid %s data: %w", name, err)
	}
	return string(out), name, nil
}

// FindMarkdownFiles returns the markdown files below dir, sorted. Files
// ignored by git are skipped unless all is set.
func FindMarkdownFiles(dir string, all bool) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var ch chan gitcha.SearchResult
	if all {
		ch, err = gitcha.FindAllFilesExcept(abs, utils.SearchPatterns(), nil)
	} else {
		ch, err = gitcha.FindFilesExcept(abs, utils.SearchPatterns(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var files []string
	for res := range ch {
		if res.Info != nil && res.Info.IsDir() {
			continue
		}
		files = append(files, res.Path)
	}
	sort.Strings(files)

	log.Debug("markdown search finished", "dir", abs, "files", len(files))
	return files, nil
}
