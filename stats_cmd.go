package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tino-md/tino/internal/render"
)

var statsCmd = &cobra.Command{
	Use:   "stats [FILE]",
	Short: "Show word counts and render timings",
	Long: paragraph(fmt.Sprintf("\nShow %s for a document, then render it twice to "+
		"compare a cold render with a cached one.", keyword("word counts"))),
	Example: paragraph("tino stats README.md"),
	Args:    cobra.MaximumNArgs(1),
	RunE:    runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	doc, err := documentFromArg(arg)
	if err != nil {
		return err
	}

	r := newRenderer(nil)
	cold, err := r.Render(doc.Content, doc.Path)
	if err != nil {
		return err
	}
	warm, err := r.Render(doc.Content, doc.Path)
	if err != nil {
		return err
	}

	ws := render.WordCount(doc.Content)
	stats := r.CacheStats()
	w := cmd.OutOrStdout()

	row := func(label, value string) {
		fmt.Fprintf(w, "%-24s %s\n", label, value)
	}
	section := func(title string) {
		fmt.Fprintln(w, keyword(title))
	}

	section(displayPath(doc.Path))
	row("Size", humanize.Bytes(uint64(len(doc.Content))))
	row("Encoding", doc.Encoding)
	row("Words", humanize.Comma(int64(ws.Words)))
	row("Characters", humanize.Comma(int64(ws.Characters)))
	row("Characters with spaces", humanize.Comma(int64(ws.CharactersWithSpaces)))
	row("Paragraphs", humanize.Comma(int64(ws.Paragraphs)))
	row("Lines", humanize.Comma(int64(ws.Lines)))
	row("Headings", humanize.Comma(int64(len(cold.Outline))))
	row("Issues", fmt.Sprintf("%d (%d errors)", len(cold.Issues), cold.ErrorCount()))

	fmt.Fprintln(w)
	section("Rendering (" + r.Theme() + " theme)")
	row("Cold render", renderTiming(cold.RenderTimeMs, cold.Cached))
	row("Warm render", renderTiming(warm.RenderTimeMs, warm.Cached))
	printCacheStats(w, stats.Size, stats.MaxSize, stats.Hits, stats.Misses, stats.HitRatio)
	return nil
}

func renderTiming(ms float64, cached bool) string {
	s := fmt.Sprintf("%.2fms", ms)
	if cached {
		s += " " + subtle("(from cache)")
	}
	return s
}

func printCacheStats(w io.Writer, size, maxSize int, hits, misses int64, ratio float64) {
	fmt.Fprintf(w, "%-24s %d/%d entries, %s hits, %s misses, %.0f%% hit ratio\n",
		"Cache", size, maxSize, humanize.Comma(hits), humanize.Comma(misses), ratio*100)
}
