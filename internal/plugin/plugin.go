// Package plugin runs the post-processing steps declared in the plugins
// directory of the output tree.
package plugin

import (
	"sort"
	"strings"
	"sync"
)

// Interpreter is the command line that runs a script file, e.g. "node".
// The script path is appended as the last argument.
type Interpreter []string

// Registry maps script extensions to interpreters.
type Registry struct {
	mu           sync.RWMutex
	interpreters map[string]Interpreter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{interpreters: make(map[string]Interpreter)}
}

// DefaultRegistry knows JavaScript, TypeScript and shell scripts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".js", Interpreter{"node"})
	r.Register(".ts", Interpreter{"npx", "ts-node"})
	r.Register(".sh", Interpreter{"sh"})
	return r
}

// Register adds or replaces the interpreter for ext (".js").
func (r *Registry) Register(ext string, in Interpreter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interpreters[strings.ToLower(ext)] = in
}

// Get returns the interpreter for ext.
func (r *Registry) Get(ext string) (Interpreter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.interpreters[strings.ToLower(ext)]
	return in, ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.interpreters))
	for ext := range r.interpreters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
