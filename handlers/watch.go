// handlers/watch.go - Challenge update subscriptions over WebSocket
package handlers

import (
	"log"
	"sync"
	"ustaadgpt/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// watchSubscriber is one connection watching one challenge. All writes to
// the socket go through the send channel and a single writer goroutine,
// since the underlying websocket allows only one concurrent writer.
type watchSubscriber struct {
	conn *websocket.Conn
	send chan watchMessage
}

const watchSendBuffer = 8

// challengeHub fans challenge snapshots out to WebSocket subscribers.
// Delivery is at-least-once and unordered; clients reconcile by reading
// the status/scores of each snapshot. Lifecycle correctness never depends
// on these notifications. Slow consumers have messages dropped rather
// than blocking a publish.
type challengeHub struct {
	mu   sync.RWMutex
	subs map[string]map[*watchSubscriber]bool // challenge public id -> subscribers
}

var hub = &challengeHub{
	subs: make(map[string]map[*watchSubscriber]bool),
}

func (h *challengeHub) subscribe(challengeID string, sub *watchSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[challengeID] == nil {
		h.subs[challengeID] = make(map[*watchSubscriber]bool)
	}
	h.subs[challengeID][sub] = true
}

// unsubscribe removes the subscriber and closes its send channel, ending
// the writer goroutine. Safe to call more than once. publish holds the
// read lock while sending, so a close can never race a send.
func (h *challengeHub) unsubscribe(challengeID string, sub *watchSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.subs[challengeID][sub] {
		return
	}
	delete(h.subs[challengeID], sub)
	if len(h.subs[challengeID]) == 0 {
		delete(h.subs, challengeID)
	}
	close(sub.send)
}

// publish enqueues the message for every subscriber of the challenge.
// A subscriber whose buffer is full misses this update; it catches up on
// the next one.
func (h *challengeHub) publish(challengeID string, msg watchMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[challengeID] {
		select {
		case sub.send <- msg:
		default:
		}
	}
}

type watchMessage struct {
	Type      string            `json:"type"`
	Challenge *models.Challenge `json:"challenge"`
}

// PublishChallengeUpdate pushes the fresh record to everyone watching it.
func PublishChallengeUpdate(challenge *models.Challenge) {
	hub.publish(challenge.PublicID, watchMessage{Type: "challenge_update", Challenge: challenge})
}

// WatchUpgrade gates the watch route to real WebSocket upgrade requests
func WatchUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WatchChallenge subscribes the connection to one challenge's updates
// GET /ws/challenges/:id
var WatchChallenge = websocket.New(func(conn *websocket.Conn) {
	challengeID := conn.Params("id")

	challenge, err := challengeService.GetChallenge(challengeID)
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"type": "error", "error": "Challenge not found"})
		_ = conn.Close()
		return
	}

	sub := &watchSubscriber{
		conn: conn,
		send: make(chan watchMessage, watchSendBuffer),
	}
	hub.subscribe(challengeID, sub)
	defer func() {
		hub.unsubscribe(challengeID, sub)
		_ = conn.Close()
	}()

	// Single writer: every outbound frame, the initial snapshot included,
	// is drained from the send channel by this goroutine alone.
	go func() {
		for msg := range sub.send {
			if err := sub.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	// Initial snapshot so late subscribers start from current state
	sub.send <- watchMessage{Type: "challenge_update", Challenge: challenge}

	log.Printf("👀 Watch opened for challenge %s", challengeID)

	// Block on reads until the client goes away; inbound payloads are ignored
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
})
