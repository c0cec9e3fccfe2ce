// Package knowledge holds the read-only FAQ knowledge base.
package knowledge

import (
	"fmt"
	"strings"
)

// DefaultCategory is assigned to entries that do not name one.
const DefaultCategory = "general"

// Entry is one FAQ: the keywords that select it and the payload returned
// when it matches.
type Entry struct {
	Key      string   `json:"key" yaml:"key"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Response string   `json:"response" yaml:"response"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
}

// Base is an ordered, immutable set of entries. Order is declaration
// order and is significant to the scorer.
type Base struct {
	entries []Entry
	index   map[string]int
	source  string
}

// New validates entries and builds a Base. Slices are copied so later
// changes to the input do not leak in.
func New(entries []Entry) (*Base, error) {
	b := &Base{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Key) == "" {
			return nil, fmt.Errorf("entry %d: key is required", i)
		}
		if _, dup := b.index[e.Key]; dup {
			return nil, fmt.Errorf("entry %d: duplicate key %q", i, e.Key)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("entry %q: at least one keyword is required", e.Key)
		}
		for j, kw := range e.Keywords {
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("entry %q: keyword %d is empty", e.Key, j)
			}
		}
		if e.Category == "" {
			e.Category = DefaultCategory
		}

		e.Keywords = append([]string(nil), e.Keywords...)
		if len(e.Options) > 0 {
			e.Options = append([]string(nil), e.Options...)
		}
		b.index[e.Key] = len(b.entries)
		b.entries = append(b.entries, e)
	}

	return b, nil
}

// Entries returns every entry in declaration order. The returned slice is
// shared; callers must not modify it.
func (b *Base) Entries() []Entry {
	return b.entries
}

// Get looks an entry up by key.
func (b *Base) Get(key string) (Entry, bool) {
	i, ok := b.index[key]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

func (b *Base) Len() int {
	return len(b.entries)
}

// Categories counts entries per category.
func (b *Base) Categories() map[string]int {
	out := make(map[string]int)
	for _, e := range b.entries {
		out[e.Category]++
	}
	return out
}

// Source is the file the base was loaded from, empty for in-memory bases.
func (b *Base) Source() string {
	return b.source
}
