package preview

import (
	"errors"
	"fmt"

	"github.com/rescp17/previewsender/pkg/media"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Entry is the derived media of one mode with its display rows.
type Entry struct {
	Media []media.Media
	Rows  []Row
}

// Cache holds at most one Entry per SendMode. Entries are never evicted and
// the first write for a mode wins. Every entry describes the same selection,
// so all of them share one length and one order.
type Cache struct {
	entries map[SendMode]*Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[SendMode]*Entry)}
}

// Get returns a copy of the entry for mode.
func (c *Cache) Get(mode SendMode) (Entry, bool) {
	e, ok := c.entries[mode]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Media: append([]media.Media(nil), e.Media...),
		Rows:  append([]Row(nil), e.Rows...),
	}, true
}

// Has reports whether mode is cached.
func (c *Cache) Has(mode SendMode) bool {
	_, ok := c.entries[mode]
	return ok
}

// Len returns the number of cached modes.
func (c *Cache) Len() int { return len(c.entries) }

// Put stores e for mode unless mode is already cached. It reports whether
// the entry was stored.
func (c *Cache) Put(mode SendMode, e Entry) (bool, error) {
	if _, ok := c.entries[mode]; ok {
		return false, nil
	}
	if n, ok := c.length(); ok && n != len(e.Media) {
		return false, fmt.Errorf("entry for %s has %d media, cache holds %d", mode, len(e.Media), n)
	}
	if mode != ModeCollage && len(e.Rows) != len(e.Media) {
		return false, fmt.Errorf("entry for %s has %d rows for %d media", mode, len(e.Rows), len(e.Media))
	}
	c.entries[mode] = &Entry{
		Media: append([]media.Media(nil), e.Media...),
		Rows:  append([]Row(nil), e.Rows...),
	}
	return true, nil
}

// Move repositions the item at from to index to in every entry. List rows
// move with their media; collage albums are regrouped from the new order.
func (c *Cache) Move(from, to int) error {
	n, ok := c.length()
	if !ok {
		return nil
	}
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d of %d: %w", from, to, n, ErrIndexOutOfRange)
	}
	for mode, e := range c.entries {
		e.Media = move(e.Media, from, to)
		if mode == ModeCollage {
			e.Rows = BuildRows(mode, e.Media)
		} else {
			e.Rows = move(e.Rows, from, to)
		}
	}
	return nil
}

func (c *Cache) length() (int, bool) {
	for _, e := range c.entries {
		return len(e.Media), true
	}
	return 0, false
}

// move removes s[from] and reinserts it at to, in place.
func move[T any](s []T, from, to int) []T {
	if from == to {
		return s
	}
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return s
}
