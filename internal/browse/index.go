package browse

import (
	"strings"

	"github.com/google/btree"

	"github.com/yairfalse/cfs/storage"
)

// Index is an in-memory snapshot of the tree, ordered by path. It is built
// once and never refreshed, so concurrent searches need no locking.
type Index struct {
	docs *btree.BTreeG[storage.Document]
}

// NewIndex indexes docs.
func NewIndex(docs []storage.Document) *Index {
	idx := &Index{
		docs: btree.NewG[storage.Document](32, func(a, b storage.Document) bool {
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.ID < b.ID
		}),
	}
	for _, d := range docs {
		idx.docs.ReplaceOrInsert(d)
	}
	return idx
}

// Len returns the number of indexed documents.
func (i *Index) Len() int {
	return i.docs.Len()
}

// Search returns every document whose path or content contains text,
// ignoring case, in path order. An empty text matches nothing.
func (i *Index) Search(text string) []storage.Document {
	matched := []storage.Document{}
	if text == "" {
		return matched
	}
	query := strings.ToLower(text)

	i.docs.Ascend(func(d storage.Document) bool {
		if d.Matches(query) {
			matched = append(matched, d)
		}
		return true
	})
	return matched
}
