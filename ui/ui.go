// Package ui provides the terminal pager for tino.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/tino-md/tino/internal/render"
	"github.com/tino-md/tino/internal/source"
	"github.com/tino-md/tino/utils"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// NewProgram returns a new Tea program showing the document described by
// cfg. Rendering goes through r, so its cache and theme are shared with the
// caller. A nil r gets a default renderer.
func NewProgram(cfg Config, r *render.Renderer) *tea.Program {
	log.Debug(
		"Starting tino",
		"path", cfg.Path,
		"glamour", cfg.GlamourEnabled,
		"reload_interval", cfg.ReloadInterval,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, r), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	documentLoadedMsg       string
	statusMessageTimeoutMsg struct{}
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg      Config
	renderer *render.Renderer
	width    int
	height   int
}

type model struct {
	common   *commonModel
	pager    pagerModel
	fatalErr error
}

func newModel(cfg Config, r *render.Renderer) model {
	if r == nil {
		r = render.New(nil)
	}
	if cfg.GlamourStyle == "" {
		cfg.GlamourStyle = styles.AutoStyle
	}
	cfg.GlamourStyle = utils.ResolveStyle(cfg.GlamourStyle)

	common := &commonModel{
		cfg:      cfg,
		renderer: r,
	}

	m := model{
		common: common,
		pager:  newPagerModel(common),
	}
	m.pager.document = document{
		path: cfg.Path,
		note: "stdin",
		body: cfg.Content,
	}
	if cfg.Path != "" {
		m.pager.document.note = filepath.Base(cfg.Path)
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.pager.document.path != "" {
		return loadDocument(m.pager.document.path)
	}
	return renderDocument(m.pager)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.pager.unload()
			return m, tea.Quit

		case "ctrl+z":
			return m, tea.Suspend
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)

	case errMsg:
		// Errors before the first render leave nothing to show.
		if !m.pager.rendered {
			log.Error("unable to show document", "error", msg.err)
			m.fatalErr = msg.err
			return m, nil
		}
	}

	newPagerModel, cmd := m.pager.update(msg)
	m.pager = newPagerModel
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	return m.pager.View()
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := source.Load(path)
		if err != nil {
			log.Error("unable to load document", "path", path, "error", err)
			return errMsg{err}
		}
		return documentLoadedMsg(doc.Content)
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
