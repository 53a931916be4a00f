// file: game/player.go
package game

// Player is the per-connection race state inside one room. The JSON field
// names are part of the wire protocol, so they stay lowercase/short.
type Player struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Index    int     `json:"index"`
	Finished bool    `json:"finished"`
	Time     float64 `json:"time"`
	Errors   int     `json:"errors"`
}

func newPlayer(id, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
	}
}

// reset returns the record to its pre-round state, keeping identity.
func (p *Player) reset() {
	p.Index = 0
	p.Finished = false
	p.Time = 0
	p.Errors = 0
}
