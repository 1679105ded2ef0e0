// Package channel implements the server-side channel table: the
// server-global mapping from a server-assigned channel id to the
// client that opened it, its name, and its access rights.
package channel

import (
	"sync"
	"sync/atomic"
)

// Entry describes one open channel (spec §3 Channel table).
type Entry struct {
	ClientID     uint32
	Name         []byte
	AccessRights uint16
}

// Table is the server-global channel table. Mutations are serialized
// under a single mutex; reads snapshot a persistent-immutable map so
// they never block a writer (spec §5).
type Table struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[uint32]Entry]
}

// NewTable returns an empty channel table.
func NewTable() *Table {
	t := &Table{}
	empty := make(map[uint32]Entry)
	t.snapshot.Store(&empty)
	return t
}

// Insert records a newly created channel under its server-assigned id.
// Existing on-the-fly readers keep seeing the table as it was before
// this call until they re-read the snapshot.
func (t *Table) Insert(serverID uint32, entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[uint32]Entry, len(*t.snapshot.Load())+1)
	for k, v := range *t.snapshot.Load() {
		next[k] = v
	}
	next[serverID] = entry
	t.snapshot.Store(&next)
}

// Remove deletes a channel, e.g. on DestroyChannel. A missing id is a
// no-op: destroying an already-gone channel is not an error at this
// layer.
func (t *Table) Remove(serverID uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := *t.snapshot.Load()
	if _, ok := current[serverID]; !ok {
		return
	}
	next := make(map[uint32]Entry, len(current)-1)
	for k, v := range current {
		if k != serverID {
			next[k] = v
		}
	}
	t.snapshot.Store(&next)
}

// Get performs a lock-free lookup against the current snapshot.
func (t *Table) Get(serverID uint32) (Entry, bool) {
	m := *t.snapshot.Load()
	e, ok := m[serverID]
	return e, ok
}

// Snapshot returns the current table contents for inspection (used by
// internal/monitor). The returned map must not be mutated.
func (t *Table) Snapshot() map[uint32]Entry {
	return *t.snapshot.Load()
}

// Len reports the number of open channels.
func (t *Table) Len() int {
	return len(*t.snapshot.Load())
}
