package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/catalog"
)

// Slot names. They match the keys the browser app kept in localStorage.
const (
	BookmarksKey     = "sustainify.bookmarks"
	ContributionsKey = "sustainify.contributions"
)

// Store persists the bookmark set and the contribution list.
// Loads never fail: a missing or unreadable slot yields an empty collection.
type Store struct {
	slots  Slots
	logger *zap.Logger
}

func New(slots Slots, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{slots: slots, logger: logger}
}

// LoadBookmarks returns the stored bookmark set, or an empty one.
func (s *Store) LoadBookmarks() BookmarkSet {
	var ids []string
	if !s.load(BookmarksKey, &ids) {
		return NewBookmarkSet()
	}
	return NewBookmarkSet(ids...)
}

// SaveBookmarks replaces the stored bookmark set.
func (s *Store) SaveBookmarks(b BookmarkSet) error {
	return s.save(BookmarksKey, b.IDs())
}

// LoadContributions returns the stored contributions, newest first, or none.
func (s *Store) LoadContributions() []catalog.Product {
	var items []catalog.Product
	if !s.load(ContributionsKey, &items) {
		return []catalog.Product{}
	}
	out := make([]catalog.Product, 0, len(items))
	for _, p := range items {
		p.Kind = catalog.KindContribution
		out = append(out, p.Normalize())
	}
	return out
}

// SaveContributions replaces the stored contribution list.
func (s *Store) SaveContributions(items []catalog.Product) error {
	if items == nil {
		items = []catalog.Product{}
	}
	return s.save(ContributionsKey, items)
}

func (s *Store) Close() error {
	return s.slots.Close()
}

func (s *Store) load(key string, v any) bool {
	raw, ok, err := s.slots.Get(key)
	if err != nil {
		s.logger.Warn("Failed to read slot, using empty value", zap.String("slot", key), zap.Error(err))
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("Corrupt slot, using empty value", zap.String("slot", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.slots.Set(key, string(data)); err != nil {
		return err
	}
	return nil
}

// BookmarkSet is a set of product ids.
type BookmarkSet map[string]struct{}

func NewBookmarkSet(ids ...string) BookmarkSet {
	b := make(BookmarkSet, len(ids))
	for _, id := range ids {
		b[id] = struct{}{}
	}
	return b
}

func (b BookmarkSet) Has(id string) bool {
	_, ok := b[id]
	return ok
}

// Toggle flips membership of id and reports whether it is now bookmarked.
func (b BookmarkSet) Toggle(id string) bool {
	if b.Has(id) {
		delete(b, id)
		return false
	}
	b[id] = struct{}{}
	return true
}

// IDs returns the members in sorted order.
func (b BookmarkSet) IDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
