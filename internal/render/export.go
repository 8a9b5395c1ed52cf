package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ExportOptions controls ExportHTML.
type ExportOptions struct {
	// Standalone wraps the fragment in a complete HTML document.
	Standalone bool
	// IncludeCSS embeds the active theme's stylesheet. Only used with
	// Standalone.
	IncludeCSS bool
	// Compress writes the file zstd compressed.
	Compress bool
}

// DefaultExportOptions returns a standalone document with CSS.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Standalone: true, IncludeCSS: true}
}

// ExportHTML renders text with the active theme and writes the result to
// outPath. filePath is the document's own location, used for link checks
// and the cache key; it may be empty.
func (r *Renderer) ExportHTML(text, filePath, outPath string, opts ExportOptions) error {
	result, err := r.Render(text, filePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	doc := result.HTML
	if opts.Standalone {
		title := "Document"
		if len(result.Outline) > 0 && result.Outline[0].Text != "" {
			title = result.Outline[0].Text
		}
		css := ""
		if opts.IncludeCSS {
			t, _ := LookupTheme(r.Theme())
			css = t.CSS
		}
		doc = StandaloneHTML(title, result.HTML, css)
	}

	if err := writeExport(outPath, doc, opts.Compress); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// StandaloneHTML wraps an HTML fragment in a complete document. css may be
// empty.
func StandaloneHTML(title, body, css string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	if css != "" {
		fmt.Fprintf(&b, "<style>%s</style>\n", css)
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeExport(path, doc string, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	var out io.Writer = w
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(w)
		if err != nil {
			return err
		}
		out = enc
	}

	if _, err := io.WriteString(out, doc); err != nil {
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return w.Flush()
}
