// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config holds the desokit configuration: a TOML file with
// environment overrides, validated with English error messages.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rusq/osenv/v2"

	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/graphql"
	"github.com/desotools/desokit/internal/network"
	"github.com/desotools/desokit/internal/osext"
	"github.com/desotools/desokit/internal/poller"
	"github.com/desotools/desokit/internal/reposearch"
)

// DefaultFilename is the config file loaded when none is given and it
// exists in the current directory.
const DefaultFilename = "desokit.toml"

var ErrInvalid = errors.New("config validation failed")

type Config struct {
	Node    Node    `toml:"node"`
	GraphQL GraphQL `toml:"graphql"`
	Search  Search  `toml:"search"`
	Chat    Chat    `toml:"chat"`
	MCP     MCP     `toml:"mcp"`
	Cache   Cache   `toml:"cache"`
}

// Node is the DeSo node API configuration.
type Node struct {
	URL string `toml:"url" validate:"required,http_url"`
	network.Limits
}

type GraphQL struct {
	URL     string        `toml:"url" validate:"required,http_url"`
	Timeout time.Duration `toml:"timeout" validate:"gte=0,lte=10m"`
}

// Search configures the repository search.
type Search struct {
	ReposDir    string   `toml:"repos_dir" validate:"required"`
	Directories []string `toml:"directories" validate:"dive,required,excludesall=/"`
	MaxResults  int      `toml:"max_results" validate:"gte=1,lte=100"`
	MaxExcerpt  int      `toml:"max_excerpt" validate:"gte=50,lte=10000"`
}

// Chat configures the chat command.
type Chat struct {
	// PublicKey is the user's public key.
	PublicKey string `toml:"public_key" validate:"omitempty,startswith=BC1YL|startswith=tBC1YL"`
	// Database is the chat store file; empty disables the store.
	Database     string        `toml:"database"`
	FastInterval time.Duration `toml:"fast_interval" validate:"gte=1s,lte=10m"`
	IdleInterval time.Duration `toml:"idle_interval" validate:"gtefield=FastInterval,lte=1h"`
	ActiveWindow time.Duration `toml:"active_window" validate:"gte=1s,lte=24h"`
	PageSize     int           `toml:"page_size" validate:"gte=1,lte=100"`
}

type MCP struct {
	Transport string `toml:"transport" validate:"oneof=stdio http"`
	Host      string `toml:"host" validate:"required"`
	Port      int    `toml:"port" validate:"gte=1,lte=65535"`
}

// Addr returns the HTTP listen address.
func (m MCP) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Cache configures the profile cache.
type Cache struct {
	Dir      string        `toml:"dir"`
	MaxAge   time.Duration `toml:"max_age" validate:"gte=0"`
	Disabled bool          `toml:"disabled"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Node: Node{
			URL:    deso.DefaultNodeURL,
			Limits: network.DefLimits,
		},
		GraphQL: GraphQL{
			URL:     graphql.DefaultURL,
			Timeout: 30 * time.Second,
		},
		Search: Search{
			ReposDir:    "repos",
			Directories: append([]string(nil), reposearch.DefaultDirectories...),
			MaxResults:  reposearch.DefaultMaxResults,
			MaxExcerpt:  reposearch.DefaultMaxExcerpt,
		},
		Chat: Chat{
			FastInterval: poller.DefFast,
			IdleInterval: poller.DefIdle,
			ActiveWindow: poller.DefActiveWindow,
			PageSize:     25,
		},
		MCP: MCP{
			Transport: "stdio",
			Host:      "127.0.0.1",
			Port:      3000,
		},
		Cache: Cache{
			MaxAge: 24 * time.Hour,
		},
	}
}

// Load reads the config file over the defaults, applies the environment
// overrides and validates the result.  Empty filename loads DefaultFilename
// if it exists, otherwise the defaults.  Unknown keys are an error.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		if _, err := os.Stat(DefaultFilename); err == nil {
			filename = DefaultFilename
		}
	}
	if filename != "" {
		if err := decodeFile(filename, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(filename string, cfg *Config) error {
	md, err := toml.DecodeFile(filename, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", filename, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides the values set in the environment.
func (c *Config) ApplyEnv() {
	c.Node.URL = osenv.Value("DESO_NODE_URL", c.Node.URL)
	c.GraphQL.URL = osenv.Value("DESO_GRAPHQL_URL", c.GraphQL.URL)
	c.Chat.PublicKey = osenv.Value("DESO_PUBLIC_KEY", c.Chat.PublicKey)
	c.Search.ReposDir = osenv.Value("REPOS_DIR", c.Search.ReposDir)
	c.MCP.Host = osenv.Value("HOST", c.MCP.Host)
	c.MCP.Port = osenv.Value("PORT", c.MCP.Port)
}

// Validate validates the config.  The error wraps ErrInvalid and, if the
// values are out of bounds, validator.ValidationErrors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Save writes the config to filename.
func Save(filename string, c Config) error {
	return osext.WriteFile(filename, 0o644, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(c)
	})
}

// Check loads the file without the environment overrides and validates it.
func Check(filename string) error {
	cfg := Default()
	if err := decodeFile(filename, &cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	trans    ut.Translator
)

func init() {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	// report the toml key names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Problems returns the validation problems of err in English.  For errors
// other than validation errors it returns the error text.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var vErr validator.ValidationErrors
	if !errors.As(err, &vErr) {
		return []string{err.Error()}
	}
	out := make([]string, len(vErr))
	for i, fe := range vErr {
		out[i] = fe.Namespace() + ": " + fe.Translate(trans)
	}
	return out
}

// PrintErrors prints the validation problems of err to w.
func PrintErrors(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var wErr error
	var printErr = func(format string, a ...any) {
		if wErr != nil {
			return
		}
		_, wErr = fmt.Fprintf(w, format, a...)
	}
	printErr("Detected problems:\n")
	for i, p := range Problems(err) {
		printErr("\t%2d: %s\n", i+1, p)
	}
	return wErr
}
