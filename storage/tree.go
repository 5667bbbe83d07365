// Package storage owns the on-disk mirror: one JSON file per resource under
// an output root, laid out by kind and region.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ErrorLogName is the error report written at the root after a failed run.
	ErrorLogName = "errors.log"
	// PluginsDir holds plugin declarations and is not part of the mirror.
	PluginsDir = "plugins"

	gitignoreName = ".gitignore"
)

// ErrEmptyTarget is returned when an identity encodes to an empty path.
var ErrEmptyTarget = errors.New("storage: empty write target")

// Tree is an output root on the local filesystem.
type Tree struct {
	root    string
	workers int
}

// Option configures a Tree.
type Option func(*Tree)

// WithWorkers bounds how many files Load reads at once.
func WithWorkers(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New returns a tree rooted at root. Nothing is created until written.
func New(root string, opts ...Option) *Tree {
	t := &Tree{root: root, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the output root directory.
func (t *Tree) Root() string {
	return t.root
}

// ErrorLogPath returns the location of the error report.
func (t *Tree) ErrorLogPath() string {
	return filepath.Join(t.root, ErrorLogName)
}

// PluginsPath returns the plugin declaration directory.
func (t *Tree) PluginsPath() string {
	return filepath.Join(t.root, PluginsDir)
}

// Prepare creates the root, keeps it out of version control and removes the
// error report of a previous run.
func (t *Tree) Prepare() error {
	if err := os.MkdirAll(t.root, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(t.root, gitignoreName), []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("write gitignore: %w", err)
	}
	if err := os.Remove(t.ErrorLogPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale error log: %w", err)
	}
	return nil
}

// Clear recursively deletes dir under the root. Missing dirs are fine.
func (t *Tree) Clear(dir string) error {
	if err := os.RemoveAll(filepath.Join(t.root, filepath.FromSlash(dir))); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	return nil
}

// Remove deletes the whole output root.
func (t *Tree) Remove() error {
	if err := os.RemoveAll(t.root); err != nil {
		return fmt.Errorf("remove output dir: %w", err)
	}
	return nil
}

// Write stores doc as indented JSON at dir/segments. dir is a literal relative
// path (it may contain slashes); every segment is percent-encoded on its own.
// Parent directories are created on demand.
func (t *Tree) Write(dir string, segments []string, doc any) (string, error) {
	rel, err := EncodePath(segments...)
	if err != nil {
		return "", err
	}
	target := filepath.Join(t.root, filepath.FromSlash(dir), filepath.FromSlash(rel))

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", rel, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return target, nil
}

// EncodePath percent-encodes each segment independently and joins them.
// Empty segments are dropped. "." and ".." are kept as "%2E" and "%2E%2E" so
// that distinct identities never share a file.
func EncodePath(segments ...string) (string, error) {
	encoded := make([]string, 0, len(segments))
	for _, s := range segments {
		switch s {
		case "":
			continue
		case ".", "..":
			encoded = append(encoded, strings.Repeat("%2E", len(s)))
		default:
			encoded = append(encoded, url.PathEscape(s))
		}
	}
	if len(encoded) == 0 {
		return "", ErrEmptyTarget
	}
	return strings.Join(encoded, "/"), nil
}

// Files returns every resource file under the root, in lexical order, as
// paths prefixed with the root. Dotfiles, the error log and plugin files are
// not resources and are skipped. A missing root yields no files.
func (t *Tree) Files() ([]string, error) {
	if _, err := os.Stat(t.root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var files []string
	err := doublestar.GlobWalk(os.DirFS(t.root), "**", func(p string, d fs.DirEntry) error {
		if d.IsDir() || !isResource(p) {
			return nil
		}
		files = append(files, filepath.Join(t.root, filepath.FromSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", t.root, err)
	}
	return files, nil
}

func isResource(p string) bool {
	if p == ErrorLogName {
		return false
	}
	parts := strings.Split(p, "/")
	if parts[0] == PluginsDir {
		return false
	}
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}
