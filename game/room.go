// file: game/room.go
package game

import "sort"

// Room is one isolated race instance: its players, its word list and its
// round state. Callers must serialize access; the gateway holds one lock
// around every event it dispatches, so Room itself carries no mutex.
//
// Round lifecycle: idle (started=false) -> active (started=true, startTs
// fixed) -> once every player has finished, the leaderboard is computed and
// the room drops back to idle with fresh words and zeroed player records.
type Room struct {
	ID      string
	words   []Word
	players map[string]*Player
	order   []string // connection ids in join order, for display and ties
	started bool
	startTs *int64 // unix millis; nil exactly when started is false
}

// NewRoom creates an idle room with the default word set and no players.
func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		words:   DefaultWords(),
		players: make(map[string]*Player),
	}
}

// Join inserts a fresh player record for the connection. A re-join
// overwrites the old record but keeps the original join-order slot.
func (r *Room) Join(connID, username string) *Player {
	if _, exists := r.players[connID]; !exists {
		r.order = append(r.order, connID)
	}
	p := newPlayer(connID, username)
	r.players[connID] = p
	return p
}

// Start transitions the room to active. The words already on the room are
// reused unchanged for the round. Returns false (and changes nothing) if
// the round is already running or there are no words.
func (r *Room) Start(now int64) (int64, []Word, bool) {
	if r.started || len(r.words) == 0 {
		return 0, nil, false
	}
	r.started = true
	r.startTs = &now
	return now, r.words, true
}

// Progress applies a progress ping. index and errs are each optional; a nil
// pointer means "leave unchanged". Unknown connections are ignored.
func (r *Room) Progress(connID string, index, errs *int) (Player, bool) {
	p, ok := r.players[connID]
	if !ok {
		return Player{}, false
	}
	if index != nil {
		p.Index = *index
	}
	if errs != nil {
		p.Errors = *errs
	}
	return *p, true
}

// Finish records a player's final time and error count. When every player
// in the room has finished, the leaderboard is returned and the room is
// atomically reset for the next round; otherwise the leaderboard is nil.
// A finish from an unknown connection is ignored.
func (r *Room) Finish(connID string, totalTime float64, errs int) (Player, []Player, bool) {
	p, ok := r.players[connID]
	if !ok {
		return Player{}, nil, false
	}
	p.Finished = true
	p.Time = totalTime
	p.Errors = errs
	finished := *p

	for _, other := range r.players {
		if !other.Finished {
			return finished, nil, true
		}
	}

	leaderboard := r.Players()
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].Time < leaderboard[j].Time
	})
	r.reset()
	return finished, leaderboard, true
}

// Leave removes the player record. Idempotent: a connection that was never
// a member is a no-op. Returns whether a record was actually removed.
func (r *Room) Leave(connID string) bool {
	if _, ok := r.players[connID]; !ok {
		return false
	}
	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Empty reports whether the room has no members left. The registry destroys
// empty rooms; no room persists with zero players.
func (r *Room) Empty() bool {
	return len(r.players) == 0
}

// Players returns a snapshot of all player records in join order.
func (r *Room) Players() []Player {
	snapshot := make([]Player, 0, len(r.players))
	for _, id := range r.order {
		snapshot = append(snapshot, *r.players[id])
	}
	return snapshot
}

// Words returns the current word list for the round.
func (r *Room) Words() []Word {
	return r.words
}

// Started reports whether a round is currently active.
func (r *Room) Started() bool {
	return r.started
}

// StartTs returns the round start timestamp in unix millis, or nil when the
// room is idle.
func (r *Room) StartTs() *int64 {
	return r.startTs
}

// reset returns the room to idle with a fresh word set and every player
// record zeroed. Membership is untouched.
func (r *Room) reset() {
	r.started = false
	r.startTs = nil
	r.words = DefaultWords()
	for _, p := range r.players {
		p.reset()
	}
}
