package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tino-md/tino/internal/render"
)

var (
	exportOutput   string
	exportNoCSS    bool
	exportFragment bool
	exportCompress bool

	exportCmd = &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export a document as HTML",
		Long: paragraph(fmt.Sprintf("\n%s a markdown document to a standalone HTML page styled "+
			"with the active theme, or to a bare HTML fragment.", keyword("Export"))),
		Example: paragraph("tino export README.md\ntino export --theme light -o site/index.html README.md\ntino export --fragment --compress notes.md"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runExport,
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: FILE with an .html extension)")
	exportCmd.Flags().BoolVar(&exportNoCSS, "no-css", false, "leave out the theme stylesheet")
	exportCmd.Flags().BoolVar(&exportFragment, "fragment", false, "write the HTML body only")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "zstd-compress the output")
}

// exportPath derives the output file for a document path.
func exportPath(docPath, output string, compress bool) string {
	out := output
	if out == "" {
		out = "document.html"
		if docPath != "" {
			base := filepath.Base(docPath)
			out = strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
		}
	}
	if compress && !strings.HasSuffix(out, ".zst") {
		out += ".zst"
	}
	return out
}

func runExport(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	doc, err := documentFromArg(arg)
	if err != nil {
		return err
	}

	out := exportPath(doc.Path, exportOutput, exportCompress)
	opts := render.ExportOptions{
		Standalone: !exportFragment,
		IncludeCSS: !exportNoCSS,
		Compress:   exportCompress,
	}

	r := newRenderer(nil)
	if err := r.ExportHTML(doc.Content, doc.Path, out, opts); err != nil {
		return err
	}

	st, err := os.Stat(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s theme)\n",
		out, humanize.Bytes(uint64(st.Size())), r.Theme()) //nolint:gosec
	return err
}
