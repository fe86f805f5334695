package session

import (
	"sync"

	"github.com/tradegate/tradegate/internal/common/uuid"
)

// TabStore holds the session ID of one browser tab. It models the
// tab-scoped storage a web client keeps: the ID survives reloads of the
// same tab but is never shared across tabs.
type TabStore interface {
	// Get returns the stored ID, or uuid.Nil if none is set.
	Get() uuid.UUID

	// GetOrSet stores candidate if no ID is set yet and returns the
	// ID that is now stored.
	GetOrSet(candidate uuid.UUID) uuid.UUID

	// Clear forgets the stored ID so a later GetOrSet mints a new one.
	Clear()
}

type memoryTab struct {
	mu sync.Mutex
	id uuid.UUID
}

// NewMemoryTab returns a TabStore backed by process memory, used when
// the registry is embedded directly rather than fronted by HTTP.
func NewMemoryTab() TabStore {
	return &memoryTab{}
}

func (t *memoryTab) Get() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

func (t *memoryTab) GetOrSet(candidate uuid.UUID) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.id == uuid.Nil {
		t.id = candidate
	}
	return t.id
}

func (t *memoryTab) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = uuid.Nil
}

// staticTab pins the TabStore to an ID supplied by a remote client.
// The client owns its tab storage, so Clear is a no-op here.
type staticTab struct {
	id uuid.UUID
}

// StaticTab returns a TabStore fixed to the given ID.
func StaticTab(id uuid.UUID) TabStore {
	return staticTab{id: id}
}

func (t staticTab) Get() uuid.UUID {
	return t.id
}

func (t staticTab) GetOrSet(uuid.UUID) uuid.UUID {
	return t.id
}

func (t staticTab) Clear() {}
