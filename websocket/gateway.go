// file: websocket/gateway.go
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go-type-race/game"
	"go-type-race/logger"
	"go-type-race/services"
)

// Allow tests to control time.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// handlerFunc processes one inbound event for one connection. Handlers run
// with the gateway mutex held.
type handlerFunc func(*Connection, clientEvent)

// Gateway is the boundary between the transport and the room state. It owns
// the registry reference, an explicit roomId -> connection-set membership
// table (delivery to a room is a fan-out over that set, never a transport
// feature) and the handler table keyed by event name. One mutex serializes
// every room-affecting event, so no two events interleave their effects on
// a room.
type Gateway struct {
	mu       sync.Mutex
	registry *game.Registry
	archive  *services.ChatArchive
	conns    map[*Connection]bool
	members  map[string]map[*Connection]bool
	roomOf   map[*Connection]string
	handlers map[string]handlerFunc
}

// NewGateway wires a gateway to the given registry and chat archive. The
// archive may be disabled; chat delivery never depends on it.
func NewGateway(registry *game.Registry, archive *services.ChatArchive) *Gateway {
	g := &Gateway{
		registry: registry,
		archive:  archive,
		conns:    make(map[*Connection]bool),
		members:  make(map[string]map[*Connection]bool),
		roomOf:   make(map[*Connection]string),
		handlers: make(map[string]handlerFunc),
	}
	g.Handle("room:join", g.handleJoin)
	g.Handle("chat:send", g.handleChat)
	g.Handle("game:start", g.handleStart)
	g.Handle("game:progress", g.handleProgress)
	g.Handle("game:finished", g.handleFinish)
	return g
}

// Handle registers a handler for an inbound event name and returns a
// capability that removes exactly that handler again.
func (g *Gateway) Handle(event string, fn handlerFunc) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[event] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.handlers, event)
	}
}

// register tracks a new connection and replies with the connected event.
func (g *Gateway) register(c *Connection) {
	g.mu.Lock()
	g.conns[c] = true
	count := len(g.conns)
	g.mu.Unlock()

	g.sendTo(c, serverEvent{Event: "connected", Data: connectedPayload{
		ID:       c.id,
		Username: c.username,
	}})
	go PublishConnectionCount(count)
}

// dispatch routes one inbound event through the handler table. Unknown
// events and events with no room id are silently dropped: a stale or
// malformed message must never error a client off the socket.
func (g *Gateway) dispatch(c *Connection, evt clientEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn, ok := g.handlers[evt.Event]
	if !ok {
		logger.Debug.Printf("Unhandled event %q from %s", evt.Event, c.id)
		return
	}
	if evt.RoomID == "" {
		logger.Debug.Printf("Dropping %q from %s: no roomId", evt.Event, c.id)
		return
	}
	fn(c, evt)
}

// disconnect handles transport-level teardown as an ordinary leave.
func (g *Gateway) disconnect(c *Connection) {
	g.mu.Lock()
	if _, ok := g.conns[c]; !ok {
		g.mu.Unlock()
		return
	}
	g.leaveCurrentRoom(c)
	delete(g.conns, c)
	count := len(g.conns)
	g.mu.Unlock()

	logger.Info.Printf("Disconnected: id=%s username=%q", c.id, c.username)
	go PublishConnectionCount(count)
}

// ------------------- event handlers (gateway mutex held) -------------------

func (g *Gateway) handleJoin(c *Connection, evt clientEvent) {
	// a connection belongs to at most one room at a time; a re-join of the
	// same room just overwrites the record without a leave/join cycle
	if g.roomOf[c] != evt.RoomID {
		g.leaveCurrentRoom(c)
	}

	room := g.registry.GetOrCreate(evt.RoomID)
	room.Join(c.id, c.username)

	if g.members[evt.RoomID] == nil {
		g.members[evt.RoomID] = make(map[*Connection]bool)
	}
	g.members[evt.RoomID][c] = true
	g.roomOf[c] = evt.RoomID

	g.broadcastRoom(evt.RoomID, serverEvent{Event: "room:user:joined", Data: userJoinedPayload{
		ID:       c.id,
		Username: c.username,
	}}, c)

	g.sendTo(c, serverEvent{Event: "room:state", Data: roomStatePayload{
		RoomID:  evt.RoomID,
		Players: room.Players(),
		Words:   room.Words(),
		Started: room.Started(),
		StartTs: room.StartTs(),
	}})
	logger.Info.Printf("%s (%q) joined room %q", c.id, c.username, evt.RoomID)
}

func (g *Gateway) handleChat(c *Connection, evt clientEvent) {
	if evt.Text == "" {
		return
	}
	// chat rides on room existence only; join-before-chat ordering
	if _, ok := g.registry.Get(evt.RoomID); !ok {
		logger.Debug.Printf("Dropping chat for unknown room %q", evt.RoomID)
		return
	}
	ts := nowMillis()
	g.broadcastRoom(evt.RoomID, serverEvent{Event: "chat:new", Data: chatPayload{
		From: c.username,
		Text: evt.Text,
		Ts:   ts,
	}}, nil)
	g.archive.Append(evt.RoomID, c.username, evt.Text)
}

func (g *Gateway) handleStart(c *Connection, evt clientEvent) {
	room, ok := g.registry.Get(evt.RoomID)
	if !ok {
		return
	}
	startTs, words, started := room.Start(nowMillis())
	if !started {
		// already running, or no word set; stale starts are not errors
		return
	}
	g.broadcastRoom(evt.RoomID, serverEvent{Event: "game:start", Data: gameStartPayload{
		StartTs: startTs,
		Words:   words,
	}}, nil)
	logger.Info.Printf("Round started in room %q at %d", evt.RoomID, startTs)
}

func (g *Gateway) handleProgress(c *Connection, evt clientEvent) {
	room, ok := g.registry.Get(evt.RoomID)
	if !ok {
		return
	}
	p, ok := room.Progress(c.id, evt.Index, evt.Errors)
	if !ok {
		return
	}
	// fire-and-forget ping to the other members only, not the sender
	g.broadcastRoom(evt.RoomID, serverEvent{Event: "player:progress", Data: progressPayload{
		ID:     p.ID,
		Index:  p.Index,
		Errors: p.Errors,
	}}, c)
}

func (g *Gateway) handleFinish(c *Connection, evt clientEvent) {
	room, ok := g.registry.Get(evt.RoomID)
	if !ok {
		return
	}
	errs := 0
	if evt.Errors != nil {
		errs = *evt.Errors
	}
	finished, leaderboard, ok := room.Finish(c.id, evt.TotalTime, errs)
	if !ok {
		return
	}

	g.broadcastRoom(evt.RoomID, serverEvent{Event: "player:finished", Data: finishedPayload{
		ID:        finished.ID,
		Username:  finished.Username,
		TotalTime: finished.Time,
		Errors:    finished.Errors,
	}}, nil)

	if leaderboard == nil {
		return
	}
	g.broadcastRoom(evt.RoomID, serverEvent{Event: "game:results", Data: resultsPayload{
		Leaderboard: leaderboard,
	}}, nil)
	logger.Info.Printf("Round complete in room %q, %d finishers", evt.RoomID, len(leaderboard))
	go PublishRaceDuration(leaderboard[len(leaderboard)-1].Time, evt.RoomID)
}

// ------------------- membership & delivery -------------------

// leaveCurrentRoom removes the connection from whatever room it is in,
// notifies the remaining members and destroys the room when it empties.
// Caller holds the gateway mutex.
func (g *Gateway) leaveCurrentRoom(c *Connection) {
	roomID, ok := g.roomOf[c]
	if !ok {
		return
	}
	delete(g.roomOf, c)
	if set, ok := g.members[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(g.members, roomID)
		}
	}

	room, ok := g.registry.Get(roomID)
	if !ok {
		return
	}
	room.Leave(c.id)
	if room.Empty() {
		g.registry.Remove(roomID)
		g.archive.Remove(roomID)
		return
	}
	g.broadcastRoom(roomID, serverEvent{Event: "room:user:left", Data: userLeftPayload{
		ID: c.id,
	}}, nil)
}

// sendTo delivers one event to one connection. Delivery is fire-and-forget:
// a full send buffer drops the message rather than blocking the dispatcher.
func (g *Gateway) sendTo(c *Connection, evt serverEvent) {
	msg, err := json.Marshal(evt)
	if err != nil {
		logger.Error.Printf("Error marshalling %q event: %v", evt.Event, err)
		return
	}
	select {
	case c.send <- msg:
	default:
		logger.Warn.Printf("Dropping %q message for connection %s", evt.Event, c.id)
		go PublishBroadcastBacklog(len(c.send))
	}
}

// broadcastRoom fans an event out over the room's membership set, skipping
// exclude when non-nil. Caller holds the gateway mutex.
func (g *Gateway) broadcastRoom(roomID string, evt serverEvent, exclude *Connection) {
	msg, err := json.Marshal(evt)
	if err != nil {
		logger.Error.Printf("Error marshalling %q event: %v", evt.Event, err)
		return
	}
	for member := range g.members[roomID] {
		if member == exclude {
			continue
		}
		select {
		case member.send <- msg:
		default:
			logger.Warn.Printf("Dropping %q message for connection %s", evt.Event, member.id)
			go PublishBroadcastBacklog(len(member.send))
		}
	}
}
