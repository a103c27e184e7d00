package engine

import (
	"time"

	"github.com/wegjgwioj/miniresp/object"
)

// entry is a store value: the Object plus its TTL bookkeeping. Stored by
// pointer so in-place Array mutations (RPUSH/LPUSH/LPOP) are visible
// without a re-insert.
type entry struct {
	value     object.Object
	createdAt time.Time
	ttl       *time.Duration // nil means no expiration
}

func (e *entry) expired(now time.Time) bool {
	if e.ttl == nil {
		return false
	}
	return now.After(e.createdAt.Add(*e.ttl))
}

// store is the Object-keyed map backing the engine. Keys are addressed by
// their canonical CacheKey (object.Object.CacheKey) since Go map keys must
// be comparable and Object, holding slices, is not.
//
// store is exclusively owned by Engine and is never accessed concurrently
// with itself — the single-writer discipline is enforced by whoever drives
// Engine.Apply, not by any lock here.
type store struct {
	entries map[string]*entry
}

func newStore() *store {
	return &store{entries: make(map[string]*entry)}
}

func (s *store) get(key object.Object) (*entry, bool) {
	e, ok := s.entries[key.CacheKey()]
	return e, ok
}

func (s *store) set(key object.Object, e *entry) {
	s.entries[key.CacheKey()] = e
}

func (s *store) delete(key object.Object) {
	delete(s.entries, key.CacheKey())
}

// getLive returns the entry at key if present and not expired, lazily
// deleting it otherwise. Only GET performs this check; LLEN/LRANGE/LPOP
// deliberately do not, so a list command can still see an entry whose TTL
// has lapsed until the next GET sweeps it away.
func (s *store) getLive(key object.Object, now time.Time) (*entry, bool) {
	e, ok := s.get(key)
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		s.delete(key)
		return nil, false
	}
	return e, true
}
