package signaling

import (
	"slices"
	"sort"
	"sync"
)

// Room is a group of peers. Its ID is the peer id of the peer that created
// it, and Members keeps join order with the creator first.
type Room struct {
	ID      string
	Members []string
}

func (r *Room) has(peerID string) bool {
	return slices.Contains(r.Members, peerID)
}

// Directory holds every live room plus a per-peer index of the rooms that
// peer belongs to. The index is kept in lockstep with room membership so a
// disconnect only visits the rooms the peer is actually in.
type Directory struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	memberships map[string]map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:       make(map[string]*Room),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Create adds a room whose id is also its creator's peer id, with the
// creator as the first member.
func (d *Directory) Create(roomID string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[roomID]; ok {
		return nil, wrapError("create room", ErrRoomAlreadyExists, roomID)
	}

	room := &Room{ID: roomID, Members: []string{roomID}}
	d.rooms[roomID] = room
	d.index(roomID, roomID)
	return &Room{ID: room.ID, Members: slices.Clone(room.Members)}, nil
}

func (d *Directory) Exists(roomID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.rooms[roomID]
	return ok
}

// Join appends peerID to the room and returns the resulting member list.
// Joining a room the peer is already in changes nothing.
func (d *Directory) Join(roomID, peerID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil, wrapError("join room", ErrRoomNotFound, roomID)
	}

	if !room.has(peerID) {
		room.Members = append(room.Members, peerID)
		d.index(peerID, roomID)
	}
	return slices.Clone(room.Members), nil
}

// Leave removes peerID from the room and returns the remaining members.
// An emptied room is deleted. removed is false if nothing changed.
func (d *Directory) Leave(roomID, peerID string) (remaining []string, removed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}

	i := slices.Index(room.Members, peerID)
	if i < 0 {
		return slices.Clone(room.Members), false
	}

	room.Members = slices.Delete(room.Members, i, i+1)
	d.unindex(peerID, roomID)

	if len(room.Members) == 0 {
		delete(d.rooms, roomID)
		return nil, true
	}
	return slices.Clone(room.Members), true
}

// MembersOf returns a copy of the room's members, or nil if it does not exist.
func (d *Directory) MembersOf(roomID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	return slices.Clone(room.Members)
}

// RoomsOf returns the ids of the rooms peerID is in, sorted.
func (d *Directory) RoomsOf(peerID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set := d.memberships[peerID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// index and unindex must be called with mu held.
func (d *Directory) index(peerID, roomID string) {
	set, ok := d.memberships[peerID]
	if !ok {
		set = make(map[string]struct{})
		d.memberships[peerID] = set
	}
	set[roomID] = struct{}{}
}

func (d *Directory) unindex(peerID, roomID string) {
	set := d.memberships[peerID]
	delete(set, roomID)
	if len(set) == 0 {
		delete(d.memberships, peerID)
	}
}
