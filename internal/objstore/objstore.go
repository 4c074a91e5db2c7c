// Package objstore allocates protocol object IDs and tracks which
// logical role each allocated ID plays.
package objstore

import (
	"sync"
	"sync/atomic"
)

// DisplayID is the ID of the display object, which exists implicitly
// from the moment the connection is established.
const DisplayID uint32 = 1

// Role identifies a singleton object that the client keeps track of.
type Role int

const (
	Display Role = iota
	Registry
	Shm
	Compositor
	WmBase
	LayerShell
	Seat
	Surface
	LayerSurface
	ShmPool
	Keyboard
	FrameCallback
	numRoles
)

var roleNames = [...]string{
	Display:       "display",
	Registry:      "registry",
	Shm:           "shm",
	Compositor:    "compositor",
	WmBase:        "wm_base",
	LayerShell:    "layer_shell",
	Seat:          "seat",
	Surface:       "surface",
	LayerSurface:  "layer_surface",
	ShmPool:       "shm_pool",
	Keyboard:      "keyboard",
	FrameCallback: "frame_callback",
}

func (r Role) String() string {
	if (r < 0) || (r >= numRoles) {
		return "unknown"
	}
	return roleNames[r]
}

// Store is an ID allocator combined with a table of role bindings. It
// is safe for concurrent use.
type Store struct {
	next uint32

	m     sync.RWMutex
	roles [numRoles]uint32
	owner map[uint32]Role
}

// New returns a Store with the display role bound to DisplayID.
func New() *Store {
	s := Store{
		next:  DisplayID,
		owner: make(map[uint32]Role),
	}
	s.Bind(Display, DisplayID)
	return &s
}

// Alloc returns a new ID. IDs start after DisplayID and are never
// reused.
func (s *Store) Alloc() uint32 {
	return atomic.AddUint32(&s.next, 1)
}

// Bind associates id with role, replacing any previous binding of
// role.
func (s *Store) Bind(role Role, id uint32) {
	s.m.Lock()
	defer s.m.Unlock()

	if old := s.roles[role]; old != 0 {
		delete(s.owner, old)
	}
	s.roles[role] = id
	if id != 0 {
		s.owner[id] = role
	}
}

// Lookup returns the ID bound to role, or 0 if there is none.
func (s *Store) Lookup(role Role) uint32 {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.roles[role]
}

// Owner returns the role that id is bound to.
func (s *Store) Owner(id uint32) (Role, bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	role, ok := s.owner[id]
	return role, ok
}

// Unbind clears the binding of role and returns the ID that was bound
// to it.
func (s *Store) Unbind(role Role) uint32 {
	s.m.Lock()
	defer s.m.Unlock()

	id := s.roles[role]
	s.roles[role] = 0
	delete(s.owner, id)
	return id
}

// Missing returns the first of roles that has no binding.
func (s *Store) Missing(roles ...Role) (Role, bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	for _, role := range roles {
		if s.roles[role] == 0 {
			return role, true
		}
	}
	return 0, false
}
