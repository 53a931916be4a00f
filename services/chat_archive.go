// Package services holds the gateway's side collaborators: the kafka chat
// archive and the room invite QR generator.
// file: services/chat_archive.go
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"

	"go-type-race/logger"
)

// ChatArchive appends every relayed chat line to a per-room kafka topic and
// deletes the topic when the room dies. It is a pure side-channel: chat
// delivery to players never waits on it, and with no endpoint configured
// every method is a no-op.
type ChatArchive struct {
	endpoint string
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
}

// NewChatArchive returns an archive talking to the given broker endpoint
// (ex: localhost:9094). An empty endpoint disables archiving entirely.
func NewChatArchive(endpoint string) *ChatArchive {
	return &ChatArchive{
		endpoint: endpoint,
		writers:  make(map[string]*kafka.Writer),
	}
}

// Enabled reports whether a broker endpoint is configured.
func (a *ChatArchive) Enabled() bool {
	return a != nil && a.endpoint != ""
}

// Append records one chat line for the room. Fire-and-forget: the write
// happens off the caller's goroutine and failures are only logged.
func (a *ChatArchive) Append(roomID, from, text string) {
	if !a.Enabled() {
		return
	}
	go a.append(roomID, from, text)
}

func (a *ChatArchive) append(roomID, from, text string) {
	w := a.writerFor(roomID)
	if w == nil {
		return
	}
	err := w.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(from),
		Value: []byte(text),
	})
	if err != nil {
		logger.Warn.Printf("Chat archive write failed for room %q: %v", roomID, err)
	}
}

// Remove closes the room's writer and deletes its topic.
func (a *ChatArchive) Remove(roomID string) {
	if !a.Enabled() {
		return
	}
	a.mu.Lock()
	w, ok := a.writers[roomID]
	delete(a.writers, roomID)
	a.mu.Unlock()
	if ok && w != nil {
		_ = w.Close()
	}

	go func() {
		conn, err := kafka.Dial("tcp", a.endpoint)
		if err != nil {
			logger.Warn.Printf("Failed to dial kafka to remove topic for room %q: %v", roomID, err)
			return
		}
		defer conn.Close()
		_ = conn.DeleteTopics(topicName(roomID))
	}()
}

// writerFor returns the cached writer for the room, creating the topic and
// writer on first use. A failed topic creation is cached as nil so a broker
// outage does not turn every chat line into a dial attempt.
func (a *ChatArchive) writerFor(roomID string) *kafka.Writer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if w, ok := a.writers[roomID]; ok {
		return w
	}

	topic := topicName(roomID)
	// the broker is configured for auto topic creation, so dialing the
	// leader is what creates the topic
	if _, err := kafka.DialLeader(context.Background(), "tcp", a.endpoint, topic, 0); err != nil {
		logger.Warn.Printf("Failed to create chat topic for room %q: %v", roomID, err)
		a.writers[roomID] = nil
		return nil
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(a.endpoint),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchSize:    1,
	}
	a.writers[roomID] = w
	return w
}

// topicName maps an arbitrary client-chosen room id onto kafka's legal
// topic character set.
func topicName(roomID string) string {
	var b strings.Builder
	b.WriteString("chat-")
	for _, r := range roomID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
