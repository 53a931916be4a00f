// file: websocket/messages.go
package websocket

import "go-type-race/game"

// clientEvent is the single inbound envelope. Every client message carries an
// event name and a roomId; the remaining fields are read per event. Index and
// Errors are pointers so a progress ping can omit either one, which means
// "leave that field unchanged".
type clientEvent struct {
	Event     string  `json:"event"`
	RoomID    string  `json:"roomId"`
	Text      string  `json:"text"`
	Index     *int    `json:"index"`
	Errors    *int    `json:"errors"`
	TotalTime float64 `json:"totalTime"`
}

// serverEvent is the single outbound envelope.
type serverEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// connectedPayload is the handshake reply carrying the connection identity.
type connectedPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// roomStatePayload is the full room snapshot sent to a joiner.
type roomStatePayload struct {
	RoomID  string        `json:"roomId"`
	Players []game.Player `json:"players"`
	Words   []game.Word   `json:"words"`
	Started bool          `json:"started"`
	StartTs *int64        `json:"startTs"`
}

type userJoinedPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type userLeftPayload struct {
	ID string `json:"id"`
}

type chatPayload struct {
	From string `json:"from"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// gameStartPayload announces the round: one timestamp and one word list,
// identical for every member.
type gameStartPayload struct {
	StartTs int64       `json:"startTs"`
	Words   []game.Word `json:"words"`
}

type progressPayload struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Errors int    `json:"errors"`
}

type finishedPayload struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	TotalTime float64 `json:"totalTime"`
	Errors    int     `json:"errors"`
}

type resultsPayload struct {
	Leaderboard []game.Player `json:"leaderboard"`
}
