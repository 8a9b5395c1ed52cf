// Package config holds tino's settings: the values read from the config
// file, the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"github.com/tino-md/tino/internal/cache"
	"github.com/tino-md/tino/internal/outline"
	"github.com/tino-md/tino/internal/render"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// MaxCacheSize is the largest accepted cache.max_size.
const MaxCacheSize = 10000

// Config contains all settings.
type Config struct {
	Theme string `yaml:"theme"` // render theme: dark or light
	Style string `yaml:"style"` // glamour style name or JSON path
	Width uint   `yaml:"width"` // word-wrap width, 0 for the terminal width
	Pager bool   `yaml:"pager"`
	All   bool   `yaml:"all"` // include hidden and git-ignored files

	Cache   CacheConfig    `yaml:"cache"`
	Checks  ValidateConfig `yaml:"validate"`
	TOC     TOCConfig      `yaml:"toc"`
	Preview PreviewConfig  `yaml:"preview"`
}

// CacheConfig sizes the render cache.
type CacheConfig struct {
	MaxSize int           `yaml:"max_size"`
	MaxAge  time.Duration `yaml:"max_age"` // 0 disables expiry
}

// ValidateConfig toggles document checks.
type ValidateConfig struct {
	Links bool `yaml:"links"`
}

// TOCConfig controls generated tables of contents.
type TOCConfig struct {
	MaxLevel int `yaml:"max_level"`
}

// PreviewConfig controls the terminal pager.
type PreviewConfig struct {
	LineNumbers bool `yaml:"line_numbers"`
	Mouse       bool `yaml:"mouse"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: render.DefaultTheme,
		Style: "auto",
		Cache: CacheConfig{
			MaxSize: cache.DefaultMaxSize,
			MaxAge:  cache.DefaultMaxAge,
		},
		Checks: ValidateConfig{Links: true},
		TOC:    TOCConfig{MaxLevel: outline.MaxLevel},
	}
}

// Validate checks every field and returns an error wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	themes := make([]any, 0, 2)
	for _, t := range render.AvailableThemes() {
		themes = append(themes, t)
	}

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Theme, validation.Required, validation.In(themes...)),
		validation.Field(&c.Style, validation.Required),
		validation.Field(&c.Width, validation.Max(uint(1000))),
	)
	if err == nil {
		err = validation.ValidateStruct(&c.Cache,
			validation.Field(&c.Cache.MaxSize, validation.Required, validation.Min(1), validation.Max(MaxCacheSize)),
			validation.Field(&c.Cache.MaxAge, validation.Min(time.Duration(0))),
		)
	}
	if err == nil {
		err = validation.ValidateStruct(&c.TOC,
			validation.Field(&c.TOC.MaxLevel, validation.Min(1), validation.Max(outline.MaxLevel)),
		)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SetDefaults registers the defaults with v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("theme", d.Theme)
	v.SetDefault("style", d.Style)
	v.SetDefault("width", d.Width)
	v.SetDefault("pager", d.Pager)
	v.SetDefault("all", d.All)

	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.max_age", d.Cache.MaxAge)
	v.SetDefault("validate.links", d.Checks.Links)
	v.SetDefault("toc.max_level", d.TOC.MaxLevel)
	v.SetDefault("preview.line_numbers", d.Preview.LineNumbers)
	v.SetDefault("preview.mouse", d.Preview.Mouse)
}

// Load reads the configuration from v and validates it. Keys that are not
// set keep their default.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("theme") {
		cfg.Theme = v.GetString("theme")
	}
	if v.IsSet("style") {
		cfg.Style = v.GetString("style")
	}
	if v.IsSet("width") {
		cfg.Width = v.GetUint("width")
	}
	if v.IsSet("pager") {
		cfg.Pager = v.GetBool("pager")
	}
	if v.IsSet("all") {
		cfg.All = v.GetBool("all")
	}

	if v.IsSet("cache.max_size") {
		cfg.Cache.MaxSize = v.GetInt("cache.max_size")
	}
	if v.IsSet("cache.max_age") {
		cfg.Cache.MaxAge = v.GetDuration("cache.max_age")
	}
	if v.IsSet("validate.links") {
		cfg.Checks.Links = v.GetBool("validate.links")
	}
	if v.IsSet("toc.max_level") {
		cfg.TOC.MaxLevel = v.GetInt("toc.max_level")
	}
	if v.IsSet("preview.line_numbers") {
		cfg.Preview.LineNumbers = v.GetBool("preview.line_numbers")
	}
	if v.IsSet("preview.mouse") {
		cfg.Preview.Mouse = v.GetBool("preview.mouse")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultFile is written by `tino config` when no config file exists yet.
const DefaultFile = `# render theme: dark or light
theme: "dark"
# glamour style name or JSON path (default "auto")
style: "auto"
# word-wrap at width, 0 uses the terminal width
width: 0
# use pager to display markdown
pager: false
# show all files, including hidden and ignored
all: false

cache:
  # rendered documents kept in memory (1-10000)
  max_size: 100
  # how long a rendered document stays valid, 0 for forever
  max_age: "5m"

validate:
  # check local links, fragments and references
  links: true

toc:
  # deepest heading level in generated tables of contents
  max_level: 6

preview:
  line_numbers: false
  # mouse support (TUI-mode only)
  mouse: false
`
