package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"github.com/tino-md/tino/internal/events"
	"github.com/tino-md/tino/internal/mdtypes"
	"github.com/tino-md/tino/internal/source"
	"golang.org/x/sync/errgroup"
)

// errIssuesFound makes check exit non-zero.
var errIssuesFound = errors.New("validation failed")

var (
	checkJobs     int
	checkWarnings bool

	checkCmd = &cobra.Command{
		Use:   "check [DIR|FILE]...",
		Short: "Validate links, fragments and references",
		Long: paragraph(fmt.Sprintf("\n%s every markdown file in the given directories and files "+
			"(default: the current directory). Exits with status 1 when an error is found.", keyword("Check"))),
		Example: paragraph("tino check\ntino check docs README.md\ntino check --strict docs"),
		RunE:    runCheck,
	}
)

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.NumCPU(), "files rendered in parallel")
	checkCmd.Flags().BoolVar(&checkWarnings, "strict", false, "treat warnings as errors")
}

type checkResult struct {
	path   string
	issues []mdtypes.ValidationIssue
	err    error
}

// collectFiles expands directories to the markdown files below them.
func collectFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var files []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("unable to open %s: %w", arg, err)
		}
		if !st.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := source.FindMarkdownFiles(arg, cfg.All)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	sub, err := bus.Subscribe(len(files))
	if err != nil {
		return err
	}

	// Render times arrive on the bus; sum them while the workers run.
	var renderMs float64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C() {
			renderMs += ev.RenderTimeMs
			log.Debug("checked", "path", ev.FilePath, "issues", ev.Issues, "ms", ev.RenderTimeMs)
		}
	}()

	r := newRenderer(bus)
	results := make([]checkResult, len(files))

	var g errgroup.Group
	g.SetLimit(max(checkJobs, 1))
	for i, path := range files {
		g.Go(func() error {
			results[i].path = path
			doc, err := source.Load(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			res, err := r.Render(doc.Content, doc.Path)
			results[i].issues = res.Issues
			results[i].err = err
			return nil
		})
	}
	_ = g.Wait()
	bus.Close()
	<-done

	w := cmd.OutOrStdout()
	var nErrors, nWarnings, nFailed int
	for _, res := range results {
		if res.err != nil {
			nFailed++
			fmt.Fprintf(w, "%s: %s %v\n", displayPath(res.path), errorLabel("failed:"), res.err)
			continue
		}
		printIssues(w, displayPath(res.path), res.issues)
		for _, issue := range res.issues {
			switch issue.Severity {
			case mdtypes.SeverityError:
				nErrors++
			case mdtypes.SeverityWarning:
				nWarnings++
			}
		}
	}

	fmt.Fprintf(w, "\nChecked %s: %s, %s %s\n",
		english.Plural(len(files), "file", ""),
		english.Plural(nErrors, "error", ""),
		english.Plural(nWarnings, "warning", ""),
		subtle(fmt.Sprintf("(%.1fms rendering)", renderMs)),
	)

	if nErrors > 0 || nFailed > 0 || (checkWarnings && nWarnings > 0) {
		return errIssuesFound
	}
	return nil
}
