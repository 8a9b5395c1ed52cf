package outline

import (
	"strings"

	"github.com/tino-md/tino/internal/mdtypes"
)

// FindByID returns the heading whose id is id. A leading "#" is ignored.
func FindByID(headings []mdtypes.Heading, id string) (mdtypes.Heading, bool) {
	id = strings.TrimPrefix(id, "#")
	for _, h := range headings {
		if h.ID == id {
			return h, true
		}
	}
	return mdtypes.Heading{}, false
}

// Next returns the first heading after line.
func Next(headings []mdtypes.Heading, line int) (mdtypes.Heading, bool) {
	for _, h := range headings {
		if h.LineNumber > line {
			return h, true
		}
	}
	return mdtypes.Heading{}, false
}

// Previous returns the last heading before line.
func Previous(headings []mdtypes.Heading, line int) (mdtypes.Heading, bool) {
	for i := len(headings) - 1; i >= 0; i-- {
		if headings[i].LineNumber < line {
			return headings[i], true
		}
	}
	return mdtypes.Heading{}, false
}

// SectionRange returns the line span owned by target: from its own line to
// the line before the next heading of the same or a higher level. A section
// with no such heading after it, or a target missing from headings, spans
// only its own line.
func SectionRange(headings []mdtypes.Heading, target mdtypes.Heading) (start, end int) {
	idx := -1
	for i, h := range headings {
		if h.ID == target.ID && h.LineNumber == target.LineNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return target.LineNumber, target.LineNumber
	}

	start = headings[idx].LineNumber
	for _, h := range headings[idx+1:] {
		if h.Level <= target.Level {
			return start, h.LineNumber - 1
		}
	}
	return start, start
}
