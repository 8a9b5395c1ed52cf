package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/dustin/go-humanize/english"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"github.com/tino-md/tino/internal/mdtypes"
	"github.com/tino-md/tino/internal/outline"
	"github.com/tino-md/tino/internal/render"
	"github.com/tino-md/tino/utils"
	"golang.org/x/time/rate"
)

const (
	statusBarHeight = 1
	lineNumberWidth = 4
)

var (
	lineNumberFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(pink).
				Background(darkRed).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lineNumberFg).
			Render
)

// document is the markdown source shown by the pager.
type document struct {
	path string // empty for stdin
	note string // shown in the status bar
	body string
}

type (
	contentRenderedMsg struct {
		content      string
		result       mdtypes.RenderResult
		headingLines []int
	}
	reloadMsg           struct{}
	editorFinishedMsg   struct{ err error }
	themeToggleErrorMsg struct{ err error }
)

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

// panel is the optional area below the status bar.
type panel int

const (
	panelNone panel = iota
	panelHelp
	panelIssues
)

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState
	panel    panel

	statusMessage      string
	statusIsError      bool
	statusMessageTimer *time.Timer

	document document
	rendered bool

	// Artifact of the last render plus the viewport line of each heading.
	result       mdtypes.RenderResult
	headingLines []int

	watcher  *fsnotify.Watcher
	watching bool
	limiter  *rate.Limiter
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	interval := common.cfg.ReloadInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	m := pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
	if common.cfg.Path != "" {
		m.initWatcher()
	}
	return m
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight

	if m.panel != panelNone {
		m.viewport.Height -= statusBarHeight + strings.Count(m.panelView(), "\n")
	}
	m.viewport.Height = max(0, m.viewport.Height)
}

func (m *pagerModel) setContent(s string) {
	m.viewport.SetContent(s)
}

func (m *pagerModel) togglePanel(p panel) {
	if m.panel == p {
		m.panel = panelNone
	} else {
		m.panel = p
	}
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

type pagerStatusMessage struct {
	message string
	isError bool
}

// showStatusMessage shows msg in the status bar until the timeout passes.
// The returned command should be sent back through the pager update
// function.
func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg.message
	m.statusIsError = msg.isError
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *pagerModel) unload() {
	log.Debug("unload")
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = pagerStateBrowse
	m.panel = panelNone
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
	m.unwatchFile()
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if m.state != pagerStateBrowse {
				m.state = pagerStateBrowse
				return m, nil
			}
			if m.panel != panelNone {
				m.togglePanel(m.panel)
				return m, nil
			}

		case "home", "g":
			m.viewport.GotoTop()

		case "end", "G":
			m.viewport.GotoBottom()

		case "n":
			if !m.jumpHeading(true) {
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"No next heading", false}))
			}

		case "p":
			if !m.jumpHeading(false) {
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"No previous heading", false}))
			}

		case "t":
			return m, toggleTheme(m.common)

		case "c":
			text, what := m.document.body, "contents"
			if i := m.currentHeading(); i >= 0 {
				text = "#" + m.result.Outline[i].ID
				what = "anchor " + text
			}
			copyText(text)
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Copied " + what, false}))

		case "T":
			toc := outline.GenerateTOC(m.result.Outline, m.common.cfg.TOCMaxLevel)
			if toc == "" {
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"No headings", false}))
				break
			}
			copyText(toc)
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Copied table of contents", false}))

		case "e":
			if m.document.path == "" {
				break
			}
			lineno := 0
			if i := m.currentHeading(); i >= 0 {
				lineno = m.result.Outline[i].LineNumber
			}
			log.Info("opening editor", "file", m.document.path, "line", lineno)
			return m, openEditor(m.document.path, lineno)

		case "r":
			if m.document.path != "" {
				return m, m.reload()
			}

		case "i":
			m.togglePanel(panelIssues)

		case "?":
			m.togglePanel(panelHelp)
		}

	case documentLoadedMsg:
		m.document.body = string(msg)
		return m, renderDocument(m)

	// The document has been rendered
	case contentRenderedMsg:
		log.Info("content rendered", "cached", msg.result.Cached, "ms", msg.result.RenderTimeMs)

		m.rendered = true
		m.result = msg.result
		m.headingLines = msg.headingLines
		m.setContent(msg.content)
		if m.panel != panelNone {
			m.setSize(m.common.width, m.common.height)
		}
		if m.watcher != nil && !m.watching {
			m.watching = true
			cmds = append(cmds, watchFile(m.watcher, m.limiter, m.document.path))
		}

	// The file was changed on disk and we're reloading it
	case reloadMsg:
		cmds = append(cmds, m.reload())
		if m.watcher != nil {
			cmds = append(cmds, watchFile(m.watcher, m.limiter, m.document.path))
		}

	// We've finished editing the document, potentially making changes.
	case editorFinishedMsg:
		if msg.err != nil {
			return m, m.showStatusMessage(pagerStatusMessage{"Editor: " + msg.err.Error(), true})
		}
		return m, m.reload()

	case themeToggleErrorMsg:
		return m, m.showStatusMessage(pagerStatusMessage{msg.err.Error(), true})

	case errMsg:
		return m, m.showStatusMessage(pagerStatusMessage{msg.Error(), true})

	// We've received terminal dimensions, either for the first time or
	// after a resize
	case tea.WindowSizeMsg:
		return m, renderDocument(m)

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// reload drops the cached renders of the current file and reads it again.
func (m pagerModel) reload() tea.Cmd {
	n := m.common.renderer.InvalidateFile(m.document.path)
	log.Debug("reloading document", "path", m.document.path, "invalidated", n)
	return loadDocument(m.document.path)
}

// currentHeading returns the index of the last heading at or above the top
// of the viewport, or -1 when the viewport is above the first heading.
func (m pagerModel) currentHeading() int {
	cur := -1
	for i, line := range m.headingLines {
		if line >= 0 && line <= m.viewport.YOffset {
			cur = i
		}
	}
	return cur
}

// jumpHeading scrolls to the next or previous heading and reports whether
// there was one. Moving back from inside a section goes to the start of that
// section first.
func (m *pagerModel) jumpHeading(forward bool) bool {
	headings := m.result.Outline
	if len(headings) == 0 {
		return false
	}

	srcLine := 0
	if i := m.currentHeading(); i >= 0 {
		srcLine = headings[i].LineNumber
		if !forward && m.headingLines[i] < m.viewport.YOffset {
			m.viewport.SetYOffset(m.headingLines[i])
			return true
		}
	} else if !forward {
		return false
	}

	for {
		var (
			h  mdtypes.Heading
			ok bool
		)
		if forward {
			h, ok = outline.Next(headings, srcLine)
		} else {
			h, ok = outline.Previous(headings, srcLine)
		}
		if !ok {
			return false
		}

		srcLine = h.LineNumber
		if line := m.lineOf(h); line >= 0 {
			m.viewport.SetYOffset(line)
			return true
		}
	}
}

// lineOf returns the viewport line showing h, or -1.
func (m pagerModel) lineOf(h mdtypes.Heading) int {
	for i, o := range m.result.Outline {
		if o.LineNumber == h.LineNumber && i < len(m.headingLines) {
			return m.headingLines[i]
		}
	}
	return -1
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	// Footer
	m.statusBarView(&b)

	if m.panel != panelNone {
		fmt.Fprint(&b, "\n"+m.panelView())
	}

	return b.String()
}

// statusNote describes the document and its last render.
func (m pagerModel) statusNote() string {
	if !m.rendered {
		return m.document.note + " · rendering" + ellipsis
	}

	timing := fmt.Sprintf("%.1fms", m.result.RenderTimeMs)
	if m.result.Cached {
		timing = "cached"
	}

	issues := "no issues"
	if n := len(m.result.Issues); n > 0 {
		issues = english.Plural(n, "issue", "")
		if errs := m.result.ErrorCount(); errs > 0 {
			issues += ", " + english.Plural(errs, "error", "")
		}
	}

	return fmt.Sprintf("%s · %s · %s · %s", m.document.note, m.common.renderer.Theme(), timing, issues)
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == pagerStateStatusMessage
	messageStyle := statusBarMessageStyle
	if m.statusIsError {
		messageStyle = statusBarErrorStyle
	}

	// Logo
	logo := tinoLogoView()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude)
	if showStatusMessage {
		scrollPercent = messageStyle(scrollPercent)
	} else {
		scrollPercent = statusBarScrollPosStyle(scrollPercent)
	}

	// "Help" note
	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage
	} else {
		note = m.statusNote()
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			lipgloss.Width(logo)-
			lipgloss.Width(scrollPercent)-
			lipgloss.Width(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = messageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.common.width-
			lipgloss.Width(logo)-
			lipgloss.Width(note)-
			lipgloss.Width(scrollPercent)-
			lipgloss.Width(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = messageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) panelView() string {
	if m.panel == panelIssues {
		return m.issuesView()
	}
	return m.helpView()
}

func (m pagerModel) helpView() (s string) {
	col1 := []string{
		"g/home  go to top",
		"G/end   go to bottom",
		"n/p     next/previous heading",
		"t       toggle dark/light theme",
		"c       copy heading anchor",
		"T       copy table of contents",
		"i       show issues",
	}
	if m.document.path != "" {
		col1 = append(col1,
			"e       edit this document",
			"r       reload this document",
		)
	}
	col1 = append(col1, "q       quit")

	col0 := []string{
		"k/↑      up",
		"j/↓      down",
		"b/pgup   page up",
		"f/pgdn   page down",
		"u        ½ page up",
		"d        ½ page down",
	}

	s += "\n"
	for i, right := range col1 {
		left := ""
		if i < len(col0) {
			left = col0[i]
		}
		s += fmt.Sprintf("%-28s%s\n", left, right)
	}
	s = strings.TrimSuffix(s, "\n")

	return fillPanel(indent(s, 2), m.common.width)
}

func (m pagerModel) issuesView() string {
	issues := m.result.Issues
	if len(issues) == 0 {
		return fillPanel(indent("\nNo issues found.", 2), m.common.width)
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, issue := range issues {
		line := fmt.Sprintf("%4d:%-3d %-8s %s", issue.LineNumber, issue.Column, issue.Severity, issue.Message)
		if m.common.width > 4 {
			line = truncate.StringWithTail(line, uint(m.common.width-4), ellipsis) //nolint:gosec
		}
		switch issue.Severity {
		case mdtypes.SeverityError:
			line = issueErrorStyle(line)
		case mdtypes.SeverityWarning:
			line = issueWarningStyle(line)
		default:
			line = issueInfoStyle(line)
		}
		b.WriteString(line + "\n")
	}
	return fillPanel(indent(strings.TrimSuffix(b.String(), "\n"), 2), m.common.width)
}

// fillPanel pads every line with spaces for background coloring.
func fillPanel(s string, width int) string {
	s = strings.TrimSuffix(s, "\n")
	if width > 0 {
		lines := strings.Split(s, "\n")
		for i := range lines {
			n := max(width-lipgloss.Width(lines[i]), 0)
			lines[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(lines, "\n")
	}
	return helpViewStyle(s)
}

// COMMANDS

// renderDocument renders the pager's document through the shared renderer
// for its outline and issues, and with glamour for display.
func renderDocument(m pagerModel) tea.Cmd {
	doc := m.document
	cfg := m.common.cfg
	r := m.common.renderer
	width := m.viewport.Width

	return func() tea.Msg {
		result, err := r.Render(doc.body, doc.path)
		if err != nil {
			log.Error("error rendering document", "error", err)
			return errMsg{err}
		}

		out, err := glamourRender(cfg, width, string(render.StripFrontMatter(doc.body)))
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}

		return contentRenderedMsg{
			content:      out,
			result:       result,
			headingLines: headingLines(out, result.Outline),
		}
	}
}

// This is where the magic happens.
func glamourRender(cfg Config, viewportWidth int, markdown string) (string, error) {
	trunc := lipgloss.NewStyle().MaxWidth(viewportWidth - lineNumberWidth).Render

	if !cfg.GlamourEnabled {
		return markdown, nil
	}

	width := viewportWidth
	if cfg.GlamourMaxWidth > 0 {
		width = max(0, min(int(cfg.GlamourMaxWidth), viewportWidth)) //nolint:gosec
	}

	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}

	lines := strings.Split(out, "\n")

	var content strings.Builder
	for i, s := range lines {
		if cfg.ShowLineNumbers {
			content.WriteString(lineNumberStyle(fmt.Sprintf("%"+fmt.Sprint(lineNumberWidth)+"d", i+1)))
			content.WriteString(trunc(s))
		} else {
			content.WriteString(s)
		}

		// don't add an artificial newline after the last split
		if i+1 < len(lines) {
			content.WriteRune('\n')
		}
	}

	return content.String(), nil
}

// toggleTheme switches the renderer between the dark and light themes. The
// glamour style follows when it is one of the two standard styles.
func toggleTheme(common *commonModel) tea.Cmd {
	next := render.ThemeLight
	if common.renderer.Theme() == render.ThemeLight {
		next = render.ThemeDark
	}
	if err := common.renderer.SetTheme(next); err != nil {
		return func() tea.Msg { return themeToggleErrorMsg{err} }
	}
	switch common.cfg.GlamourStyle {
	case styles.DarkStyle, styles.LightStyle:
		common.cfg.GlamourStyle = next
	}
	log.Debug("theme switched", "theme", next)
	return func() tea.Msg { return tea.WindowSizeMsg{Width: common.width, Height: common.height} }
}

func copyText(s string) {
	// Copy using OSC 52
	termenv.Copy(s)
	// Copy using native system clipboard
	_ = clipboard.WriteAll(s)
}

func openEditor(path string, lineno int) tea.Cmd {
	cb := func(err error) tea.Msg {
		return editorFinishedMsg{err}
	}
	cmd, err := editor.Cmd("Tino", path, editor.LineNumber(uint(max(lineno, 0)))) //nolint:gosec
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	return tea.ExecProcess(cmd, cb)
}

func (m *pagerModel) initWatcher() {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		m.watcher = nil
		return
	}

	dir := localDir(m.common.cfg.Path)
	if err := m.watcher.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		_ = m.watcher.Close()
		m.watcher = nil
		return
	}
	log.Info("fsnotify watching dir", "dir", dir)
}

// watchFile blocks until path is written or created, waits for the reload
// limiter and returns reloadMsg. Events that arrived in the meantime are
// folded into the same reload.
func watchFile(w *fsnotify.Watcher, limiter *rate.Limiter, path string) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !sameFile(event.Name, path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				if err := limiter.Wait(context.Background()); err != nil {
					log.Debug("reload limiter", "error", err)
				}
				drainEvents(w)
				return reloadMsg{}

			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Debug("fsnotify error", "path", path, "error", err)
			}
		}
	}
}

func drainEvents(w *fsnotify.Watcher) {
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (m *pagerModel) unwatchFile() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		log.Error("fsnotify fail to close watcher", "error", err)
	}
	m.watcher = nil
	m.watching = false
}
