// Package game holds the pure room/race state machine. Nothing in this
// package touches the network; the websocket gateway drives it and delivers
// whatever it computes.
// file: game/words.go
package game

// Word is a single entry in a round's word list.
type Word struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// the fixed default race content; clients type these in order
var defaultWordTexts = []string{
	"programming",
	"javascript",
	"vuejs",
	"component",
	"reactive",
}

// DefaultWords returns the default word list with fresh sequential ids.
// Called at room creation and again on every round reset.
func DefaultWords() []Word {
	words := make([]Word, len(defaultWordTexts))
	for i, text := range defaultWordTexts {
		words[i] = Word{
			ID:     i + 1,
			Text:   text,
			Status: "pending",
		}
	}
	return words
}
