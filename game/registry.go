// file: game/registry.go
package game

import (
	"sync"

	"go-type-race/logger"
)

// Registry is the process-wide table of live rooms. It is constructed once
// and handed to the gateway; there is no package-level instance. The mutex
// makes GetOrCreate atomic against concurrent first joins to the same id.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry creates an empty room table.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room for roomID, creating it if this is the first
// join. Two concurrent first joins get the same *Room.
func (g *Registry) GetOrCreate(roomID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, exists := g.rooms[roomID]
	if !exists {
		logger.Info.Printf("Creating room %q", roomID)
		room = NewRoom(roomID)
		g.rooms[roomID] = room
	}
	return room
}

// Get looks a room up without creating it. Events that must not implicitly
// create rooms (chat, start, progress, finish) go through here.
func (g *Registry) Get(roomID string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[roomID]
	return room, ok
}

// Remove deletes the room entry. No-op if absent.
func (g *Registry) Remove(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[roomID]; ok {
		delete(g.rooms, roomID)
		logger.Info.Printf("Destroyed room %q", roomID)
	}
}

// Len returns the number of live rooms, for metrics.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
