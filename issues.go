package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tino-md/tino/internal/mdtypes"
)

// displayPath shortens path relative to the working directory.
func displayPath(path string) string {
	if path == "" {
		return "<stdin>"
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

func severityLabel(s mdtypes.Severity) string {
	switch s {
	case mdtypes.SeverityError:
		return errorLabel(string(s))
	case mdtypes.SeverityWarning:
		return warningLabel(string(s))
	default:
		return infoLabel(string(s))
	}
}

// formatIssue renders an issue in the file:line:col style editors pick up.
func formatIssue(path string, issue mdtypes.ValidationIssue) string {
	return fmt.Sprintf("%s:%d:%d: %s: %s %s",
		path,
		issue.LineNumber,
		issue.Column,
		severityLabel(issue.Severity),
		issue.Message,
		subtle("["+string(issue.Type)+"]"),
	)
}

func printIssues(w io.Writer, path string, issues []mdtypes.ValidationIssue) {
	for _, issue := range issues {
		fmt.Fprintln(w, formatIssue(path, issue))
	}
}
