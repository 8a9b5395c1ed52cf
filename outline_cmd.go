package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tino-md/tino/internal/mdtypes"
	"github.com/tino-md/tino/internal/outline"
	"gopkg.in/yaml.v3"
)

var (
	outlineTOC      bool
	outlineMaxLevel int
	outlineFormat   string

	outlineCmd = &cobra.Command{
		Use:   "outline [FILE]",
		Short: "Print the heading outline of a document",
		Long: paragraph(fmt.Sprintf("\nPrint the %s of a markdown document as a tree, JSON or YAML, "+
			"or as a table of contents ready to paste.", keyword("heading outline"))),
		Example: paragraph("tino outline README.md\ntino outline --toc --max-level 3 README.md\ntino outline --format json docs/guide.md"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runOutline,
	}
)

func init() {
	outlineCmd.Flags().BoolVar(&outlineTOC, "toc", false, "print a markdown table of contents")
	outlineCmd.Flags().IntVar(&outlineMaxLevel, "max-level", 0, "deepest heading level to include (default from config)")
	outlineCmd.Flags().StringVarP(&outlineFormat, "format", "f", "tree", "output format: tree, json or yaml")
}

func runOutline(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	doc, err := documentFromArg(arg)
	if err != nil {
		return err
	}

	maxLevel := cfg.TOC.MaxLevel
	if cmd.Flags().Changed("max-level") {
		maxLevel = outlineMaxLevel
	}
	if maxLevel <= 0 || maxLevel > outline.MaxLevel {
		maxLevel = outline.MaxLevel
	}

	headings := outline.Extract(doc.Content)
	w := cmd.OutOrStdout()

	if outlineTOC {
		if toc := outline.GenerateTOC(headings, maxLevel); toc != "" {
			_, err = fmt.Fprintln(w, toc)
		}
		return err
	}

	headings = outline.Filter(headings, maxLevel)
	switch strings.ToLower(outlineFormat) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outline.Hierarchy(headings))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outline.Hierarchy(headings)); err != nil {
			return err
		}
		return enc.Close()
	case "tree", "":
		printTree(w, headings)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use tree, json or yaml", outlineFormat)
	}
}

func printTree(w io.Writer, headings []mdtypes.Heading) {
	if len(headings) == 0 {
		return
	}
	minLevel := headings[0].Level
	for _, h := range headings {
		minLevel = min(minLevel, h.Level)
	}
	for _, h := range headings {
		fmt.Fprintf(w, "%s%s %s\n",
			strings.Repeat("  ", h.Level-minLevel),
			h.Text,
			subtle(fmt.Sprintf("#%s L%d", h.ID, h.LineNumber)),
		)
	}
}
