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

// Package cfg contains common configuration variables.
package cfg

import (
	"flag"
	"log/slog"

	"github.com/rusq/osenv/v2"

	"github.com/desotools/desokit/internal/cache"
	"github.com/desotools/desokit/internal/config"
	"github.com/desotools/desokit/internal/format"
)

var (
	TraceFile   string
	LogFile     string
	JSONHandler bool
	Verbose     bool

	ConfigFile   string
	NoEncryption bool

	// Output is the output format of the listing commands.
	Output = format.CText

	// Config is the loaded configuration.
	Config = config.Default()

	Log = slog.Default()
)

// SetGlobalFlags sets the flags accepted before the command name.
func SetGlobalFlags(fs *flag.FlagSet) {
	fs.StringVar(&TraceFile, "trace", osenv.Value("TRACE_FILE", ""), "trace `filename`")
	fs.StringVar(&LogFile, "log", osenv.Value("LOG_FILE", ""), "log `file`, if not specified, messages are printed to STDERR")
	fs.BoolVar(&JSONHandler, "log-json", osenv.Value("JSON_LOG", false), "log in JSON format")
	fs.BoolVar(&Verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.StringVar(&ConfigFile, "config", osenv.Value("DESOKIT_CONFIG", ""), "configuration `file` (default: "+config.DefaultFilename+" if present)\nYou can generate one with 'desokit config new'")
	fs.BoolVar(&NoEncryption, "no-encryption", osenv.Value("NO_ENCRYPTION", false), "disable machine-bound encryption of the profile cache")
}

// AddFormatFlag adds the output format flag to fs.
func AddFormatFlag(fs *flag.FlagSet) {
	fs.Var(&Output, "format", "output format, should be one of: "+format.All().String())
}

// Formatter returns the formatter for the selected output format.
func Formatter(opts ...format.Option) (format.Formatter, error) {
	return format.New(Output, opts...)
}

// GlobalFlags returns a flag set with the global flags, used for help output.
// Current values of the global variables are preserved.
func GlobalFlags() *flag.FlagSet {
	trace, log, jsonh, verbose, config, noenc := TraceFile, LogFile, JSONHandler, Verbose, ConfigFile, NoEncryption
	fs := flag.NewFlagSet("desokit", flag.ContinueOnError)
	SetGlobalFlags(fs)
	TraceFile, LogFile, JSONHandler, Verbose, ConfigFile, NoEncryption = trace, log, jsonh, verbose, config, noenc
	return fs
}

// LoadConfig loads the configuration file into Config.
func LoadConfig() error {
	c, err := config.Load(ConfigFile)
	if err != nil {
		return err
	}
	Config = c
	return nil
}

// CacheDir returns the profile cache directory.
func CacheDir() string {
	if Config.Cache.Dir != "" {
		return Config.Cache.Dir
	}
	return cache.DefaultDir()
}

// SetDebugLevel sets the default logger level to debug.
func SetDebugLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
