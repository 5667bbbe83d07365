package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alitto/pond"
)

// ErrEmpty is returned when a search runs against a tree with no resources.
var ErrEmpty = errors.New("storage: no resources found")

// Document is one resource file held in memory.
type Document struct {
	ID      int    `json:"id"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Matches reports whether the document's path or content contains query,
// ignoring case. query must already be lower-cased.
func (d Document) Matches(query string) bool {
	return strings.Contains(strings.ToLower(d.Path), query) ||
		strings.Contains(strings.ToLower(d.Content), query)
}

// Load reads every resource file into memory. Files are read by a bounded
// worker pool; the result keeps the lexical order of Files.
func (t *Tree) Load(ctx context.Context) ([]Document, error) {
	files, err := t.Files()
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(files))
	var (
		mu       sync.Mutex
		firstErr error
	)

	pool := pond.New(t.workers, len(files)+1)
	for i, file := range files {
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			data, err := os.ReadFile(file)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("read %s: %w", file, err)
				}
				mu.Unlock()
				return
			}
			docs[i] = Document{ID: i, Path: file, Content: string(data)}
		})
	}
	pool.StopAndWait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}

// Find returns the paths of resources whose path or content contains text,
// ignoring case. It returns ErrEmpty when the tree holds no resources.
func (t *Tree) Find(ctx context.Context, text string) ([]string, error) {
	docs, err := t.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}

	query := strings.ToLower(text)
	var matched []string
	for _, d := range docs {
		if d.Matches(query) {
			matched = append(matched, d.Path)
		}
	}
	return matched, nil
}
