// Package main provides the entry point for the tino CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tino-md/tino/internal/cache"
	"github.com/tino-md/tino/internal/config"
	"github.com/tino-md/tino/internal/events"
	"github.com/tino-md/tino/internal/render"
	"github.com/tino-md/tino/internal/source"
	"github.com/tino-md/tino/ui"
	"github.com/tino-md/tino/utils"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	readmeNames = []string{"README.md", "Readme.md", "readme.md", "README.markdown"}
	configFile  string
	cfg         = config.DefaultConfig()
	pager       bool
	tui         bool
	quiet       bool

	rootCmd = &cobra.Command{
		Use:   "tino [FILE|DIR]",
		Short: "Render markdown with an outline and link checks",
		Long: paragraph(
			fmt.Sprintf("\nRender markdown on the CLI, %s!", keyword("with outlines and link checks")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if cmd.Flags().Changed("config") && configFile != viper.ConfigFileUsed() {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if viper.GetBool("no_links") {
		c.Checks.Links = false
	}
	pager = viper.GetBool("pager")
	tui = viper.GetBool("tui")

	if pager && tui {
		return errors.New("cannot use both pager and tui")
	}

	// validate the glamour style
	if err := validateStyle(c.Style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		c.Style = styles.NoTTYStyle
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && c.Width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				c.Width = uint(w) //nolint:gosec
			}

			if c.Width > 120 {
				c.Width = 120
			}
		}
		if c.Width == 0 {
			c.Width = 80
		}
	}

	cfg = c
	log.Debug("configuration loaded", "file", viper.ConfigFileUsed(), "theme", cfg.Theme, "style", cfg.Style)
	return nil
}

// newRenderer builds a renderer from the loaded configuration. bus may be
// nil.
func newRenderer(bus *events.Bus) *render.Renderer {
	opts := []render.Option{
		render.WithCache(cache.NewRenderCache(cfg.Cache.MaxSize, cfg.Cache.MaxAge)),
		render.WithTheme(cfg.Theme),
		render.WithLinkValidation(cfg.Checks.Links),
	}
	if bus != nil {
		opts = append(opts, render.WithBus(bus))
	}
	return render.New(nil, opts...)
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes {
			arg = "-"
		}
	}

	doc, err := documentFromArg(arg)
	if err != nil {
		return err
	}
	return executeCLI(cmd, doc, cmd.OutOrStdout())
}

// documentFromArg loads the document named by arg: "-" for stdin, a
// markdown file, or a directory holding a README.
func documentFromArg(arg string) (source.Document, error) {
	if arg == "-" {
		return source.Read(os.Stdin, "")
	}

	// use the current working dir if no argument was supplied
	if arg == "" {
		arg = "."
	}
	arg = utils.ExpandPath(arg)

	st, err := os.Stat(arg)
	if err == nil && st.IsDir() {
		path, err := findReadme(arg)
		if err != nil {
			return source.Document{}, err
		}
		arg = path
	}

	path, err := filepath.Abs(arg)
	if err != nil {
		return source.Document{}, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return source.Load(path)
}

// findReadme walks dir and returns the first README it meets.
func findReadme(dir string) (string, error) {
	var found string
	errFound := errors.New("source found")

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		for _, v := range readmeNames {
			if strings.EqualFold(d.Name(), v) && !d.IsDir() {
				found = path
				// abort the walk
				return errFound
			}
		}
		return nil
	})
	if found != "" {
		return found, nil
	}
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("unable to search %s: %w", dir, err)
	}
	return "", errors.New("missing markdown source")
}

func executeCLI(cmd *cobra.Command, doc source.Document, w io.Writer) error {
	r := newRenderer(nil)

	// render first so the cache is warm for the TUI and issues are known
	result, err := r.Render(doc.Content, doc.Path)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}

	if tui || cmd.Flags().Changed("tui") {
		return runTUI(r, doc)
	}

	out, err := terminalRender(doc.Content)
	if err != nil {
		return err
	}

	// display
	switch {
	case pager || cmd.Flags().Changed("pager"):
		pagerCmd := os.Getenv("PAGER")
		if pagerCmd == "" {
			pagerCmd = "less -r"
		}

		pa := strings.Split(pagerCmd, " ")
		c := exec.Command(pa[0], pa[1:]...) //nolint:gosec
		c.Stdin = strings.NewReader(out)
		c.Stdout = os.Stdout
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}
	default:
		if _, err = fmt.Fprint(w, out); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}

	if !quiet {
		printIssues(cmd.ErrOrStderr(), displayPath(doc.Path), result.Issues)
	}
	return nil
}

// terminalRender renders markdown for the terminal with glamour.
func terminalRender(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(cfg.Style),
		glamour.WithWordWrap(int(cfg.Width)), //nolint:gosec
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(string(render.StripFrontMatter(markdown)))
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func runTUI(r *render.Renderer, doc source.Document) error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if err := validateStyle(uiCfg.GlamourStyle); err != nil || uiCfg.GlamourStyle == "" {
		uiCfg.GlamourStyle = cfg.Style
	}

	uiCfg.Path = doc.Path
	if doc.Path == "" {
		uiCfg.Content = doc.Content
	}
	uiCfg.ShowLineNumbers = cfg.Preview.LineNumbers
	uiCfg.GlamourMaxWidth = cfg.Width
	uiCfg.EnableMouse = cfg.Preview.Mouse
	uiCfg.TOCMaxLevel = cfg.TOC.MaxLevel

	// Run Bubble Tea program
	if _, err := ui.NewProgram(uiCfg, r).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "config file")
	rootCmd.PersistentFlags().String("theme", render.DefaultTheme, "render theme (dark or light)")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug messages to the log file")
	rootCmd.PersistentFlags().Bool("no-links", false, "skip link validation")
	rootCmd.Flags().BoolVarP(&pager, "pager", "p", false, "display with pager")
	rootCmd.Flags().BoolVarP(&tui, "tui", "t", false, "display with tui")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print validation issues")
	rootCmd.Flags().StringP("style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintP("width", "w", 0, "word-wrap at width (set to 0 to use the terminal width)")
	rootCmd.Flags().BoolP("all", "a", false, "show system files and directories")
	rootCmd.Flags().BoolP("line-numbers", "l", false, "show line numbers (TUI-mode only)")
	rootCmd.Flags().BoolP("mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("pager", rootCmd.Flags().Lookup("pager"))
	_ = viper.BindPFlag("tui", rootCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))
	_ = viper.BindPFlag("preview.line_numbers", rootCmd.Flags().Lookup("line-numbers"))
	_ = viper.BindPFlag("preview.mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("no_links", rootCmd.PersistentFlags().Lookup("no-links"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, outlineCmd, checkCmd, exportCmd, statsCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "tino")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "tino")}, dirs...)
	}

	if c := os.Getenv("TINO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("tino")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("tino")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		configFile = used
		return
	}

	// `tino config` creates the file here.
	configFile = filepath.Join(dirs[0], "tino.yml")
}
