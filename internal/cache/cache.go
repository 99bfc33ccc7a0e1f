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

// Package cache keeps JSONL snapshots of remote data on disk.  Files are
// encrypted with a machine-bound key (see github.com/rusq/encio) unless
// encryption is disabled, and are considered stale after the maximum age.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rusq/encio"
)

const (
	cacheExt = ".cache"
	// DefMaxAge is the default maximum age of a cache file.
	DefMaxAge = 24 * time.Hour
)

var (
	ErrEmpty    = errors.New("empty cache file")
	ErrExpired  = errors.New("cache expired")
	ErrNoName   = errors.New("cache name is required")
	ErrDisabled = errors.New("cache disabled")
)

// createOpener creates and opens cache files.
type createOpener interface {
	Create(filename string) (io.WriteCloser, error)
	Open(filename string) (io.ReadCloser, error)
}

// encryptedFiles stores files encrypted with the machine id.
type encryptedFiles struct{}

func (encryptedFiles) Create(filename string) (io.WriteCloser, error) {
	return encio.Create(filename)
}

func (encryptedFiles) Open(filename string) (io.ReadCloser, error) {
	return encio.Open(filename)
}

// plainFiles stores files as is.
type plainFiles struct{}

func (plainFiles) Create(filename string) (io.WriteCloser, error) {
	return os.Create(filename)
}

func (plainFiles) Open(filename string) (io.ReadCloser, error) {
	return os.Open(filename)
}

// Manager manages the cache files in a directory.
type Manager struct {
	dir      string
	maxAge   time.Duration
	co       createOpener
	disabled bool
	lg       *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithMaxAge sets the maximum age of the cache files.  Zero or negative
// values are ignored.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxAge = d
		}
	}
}

// WithNoEncryption stores files unencrypted.
func WithNoEncryption(b bool) Option {
	return func(m *Manager) {
		if b {
			m.co = plainFiles{}
		}
	}
}

// WithDisabled disables the cache: loads always miss, saves do nothing.
func WithDisabled(b bool) Option {
	return func(m *Manager) {
		m.disabled = b
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(m *Manager) {
		if lg == nil {
			lg = slog.Default()
		}
		m.lg = lg
	}
}

// NewManager creates a new cache manager over the directory dir.  The
// directory is created with rwx------ permissions, if it does not exist.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	m := &Manager{
		dir:    dir,
		maxAge: DefMaxAge,
		co:     encryptedFiles{},
		lg:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		return m, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultDir returns the default cache directory for desokit.
func DefaultDir() string {
	ucd, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "desokit")
	}
	return filepath.Join(ucd, "desokit")
}

// Path returns the path of the cache file with the given name.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, sanitize(name)+cacheExt)
}

// Remove deletes the cache file with the given name.  Missing files are
// not an error.
func (m *Manager) Remove(name string) error {
	if err := os.Remove(m.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// sanitize makes name safe to use as a file name.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}

// Load loads the cached items stored under name.  It returns an error if the
// file does not exist, is empty or is older than the maximum age.
func Load[T any](m *Manager, name string) ([]T, error) {
	if m.disabled {
		return nil, ErrDisabled
	}
	if name == "" {
		return nil, ErrNoName
	}
	filename := m.Path(name)
	if err := checkCacheFile(filename, m.maxAge); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	f, err := m.co.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	tt, err := read[T](f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data from %s: %w", filename, err)
	}
	m.lg.Debug("cache hit", "name", name, "items", len(tt))
	return tt, nil
}

// Save stores items under name, replacing the previous content.
func Save[T any](m *Manager, name string, items []T) error {
	if m.disabled {
		return nil
	}
	if name == "" {
		return ErrNoName
	}
	filename := m.Path(name)
	f, err := m.co.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	if err := write(f, items); err != nil {
		f.Close()
		return fmt.Errorf("file: %s, error: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file: %s, error: %w", filename, err)
	}
	m.lg.Debug("cache saved", "name", name, "items", len(items))
	return nil
}

// checkCacheFile checks that the cache file exists and is not older than
// maxAge.
func checkCacheFile(filename string, maxAge time.Duration) error {
	fi, err := os.Stat(filename)
	if err != nil {
		return err
	}
	return validateCache(fi, maxAge)
}

// validateCache tests whether the provided file info meets the requirements
// for a valid cache file.
func validateCache(fi os.FileInfo, maxAge time.Duration) error {
	if fi.IsDir() {
		return errors.New("cache file is a directory")
	}
	if fi.Size() == 0 {
		return ErrEmpty
	}
	if time.Since(fi.ModTime()) > maxAge {
		return ErrExpired
	}
	return nil
}

// write writes items to w as JSONL.
func write[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, t := range items {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("failed to encode data: %w", err)
		}
	}
	return nil
}

// read reads JSONL items from r until EOF.
func read[T any](r io.Reader) ([]T, error) {
	dec := json.NewDecoder(r)
	var tt []T
	for {
		var t T
		if err := dec.Decode(&t); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		tt = append(tt, t)
	}
	return tt, nil
}
