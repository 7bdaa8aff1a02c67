// Package config loads doxsearch.toml and applies DOXSEARCH_* environment
// overrides on top of the file and the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the project root.
const FileName = "doxsearch.toml"

// ErrInvalid marks a configuration that loaded but makes no sense.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level configuration.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	URL     URLConfig     `toml:"url"`
	Sources SourcesConfig `toml:"sources"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// OutputConfig controls where and how the index is written.
type OutputConfig struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"` // site | file | json
}

// URLConfig controls how documentation targets are built for extracted
// symbols.
type URLConfig struct {
	Base           string `toml:"base"`
	Template       string `toml:"template"`
	CaseSenseNames bool   `toml:"case_sense_names"`
}

// SourcesConfig lists where symbols come from.
type SourcesConfig struct {
	Paths     []string        `toml:"paths"`
	Languages []string        `toml:"languages"`
	Ignore    []string        `toml:"ignore"`
	Manifests []string        `toml:"manifests"`
	Tagfiles  []TagfileConfig `toml:"tagfiles"`
	HTML      []HTMLConfig    `toml:"html"`
}

// TagfileConfig names a Doxygen tag file and the site its links point into.
type TagfileConfig struct {
	Path string `toml:"path"`
	Base string `toml:"base"`
}

// HTMLConfig names a directory of HTML pages to harvest anchors from. Prefix
// is prepended to the page paths in targets.
type HTMLConfig struct {
	Dir    string `toml:"dir"`
	Prefix string `toml:"prefix"`
}

// ServerConfig holds lookup server settings.
type ServerConfig struct {
	Port            int           `toml:"port"`
	Index           string        `toml:"index"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	DefaultLimit    int           `toml:"default_limit"`
	MaxLimit        int           `toml:"max_limit"`
}

// LogConfig controls structured logging level and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:    "html/search",
			Format: "site",
		},
		URL: URLConfig{
			CaseSenseNames: true,
		},
		Sources: SourcesConfig{
			Paths: []string{"."},
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			DefaultLimit:    20,
			MaxLimit:        200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides. Keys the file sets that no field knows about are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional loads path if it exists and falls back to the defaults (plus
// environment overrides) otherwise.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return Load("")
}

// applyEnvOverrides reads DOXSEARCH_* variables over the loaded values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DOXSEARCH_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DOXSEARCH_SERVER_PORT=%q is not a number", ErrInvalid, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("DOXSEARCH_SERVER_INDEX"); v != "" {
		cfg.Server.Index = v
	}
	if v := os.Getenv("DOXSEARCH_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("DOXSEARCH_URL_BASE"); v != "" {
		cfg.URL.Base = v
	}
	if v := os.Getenv("DOXSEARCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DOXSEARCH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate rejects values no command could work with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Output.Format {
	case "site", "file", "json":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q must be site, file or json", c.Output.Format))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		problems = append(problems, "output.dir must not be empty")
	}
	if c.URL.Base != "" {
		if u, err := url.Parse(c.URL.Base); err != nil || (u.Scheme != "" && u.Host == "") {
			problems = append(problems, fmt.Sprintf("url.base %q is not a valid URL", c.URL.Base))
		}
	}
	if c.URL.Template != "" {
		if _, err := template.New("url").Parse(c.URL.Template); err != nil {
			problems = append(problems, fmt.Sprintf("url.template: %v", err))
		}
	}
	for i, tag := range c.Sources.Tagfiles {
		if strings.TrimSpace(tag.Path) == "" {
			problems = append(problems, fmt.Sprintf("sources.tagfiles[%d].path must not be empty", i))
		}
	}
	for i, html := range c.Sources.HTML {
		if strings.TrimSpace(html.Dir) == "" {
			problems = append(problems, fmt.Sprintf("sources.html[%d].dir must not be empty", i))
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Server.DefaultLimit <= 0 || c.Server.MaxLimit < c.Server.DefaultLimit {
		problems = append(problems, fmt.Sprintf("server limits must satisfy 0 < default_limit (%d) <= max_limit (%d)", c.Server.DefaultLimit, c.Server.MaxLimit))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		problems = append(problems, "server timeouts must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Template is the commented configuration written by "doxsearch init".
const Template = `# doxsearch configuration

[output]
# Directory the search site is written to (site format) or file path (file
# and json formats).
dir = "html/search"
# site: search/<section>_<n>.js files plus searchdata.js
# file: a single searchData file
# json: the JSON export
format = "site"

[url]
# Prefix for generated targets; relative targets stay relative when empty.
base = ""
# Optional Go template for targets. Fields: .Page .Anchor .Name .Scope
# .Qualified .Kind .File .Line
# template = "https://example.com/blob/main/{{.File}}#L{{.Line}}"
template = ""
case_sense_names = true

[sources]
paths = ["."]
# languages = ["cpp", "go"]
languages = []
ignore = []
manifests = []

# [[sources.tagfiles]]
# path = "cppreference-doxygen-web.tag.xml"
# base = "https://en.cppreference.com/w/"

# [[sources.html]]
# dir = "docs/pages"
# prefix = "pages/"

[server]
port = 8080
index = "html/search"
read_timeout = "5s"
write_timeout = "10s"
shutdown_timeout = "10s"
default_limit = 20
max_limit = 200

[log]
level = "info"
format = "text"
`
