package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans tracking-state snapshots out to websocket clients, keyed by
// session id. With a redis client it also relays snapshots across instances
// over pub/sub, so observers connected elsewhere still see every mutation.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	// last snapshot per session, so a client connecting mid-session starts
	// from the current state instead of waiting for the next mutation
	last map[string][]byte
	mu   sync.Mutex
}

// Client is one websocket observer of a session.
type Client struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
		last:    map[string][]byte{},
	}

	if redisClient != nil {
		go h.relayRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Client {
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	if snapshot, ok := h.last[sessionID]; ok {
		client.Send <- snapshot
	}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionClients, ok := h.clients[client.SessionID]; ok {
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.clients, client.SessionID)
			delete(h.last, client.SessionID)
		}
	}
	close(client.Send)
}

// Broadcast delivers a snapshot to every client of the session. With redis
// wired, delivery goes through pub/sub so clients on every instance,
// including this one, receive it exactly once; without redis it is local
// fan-out. Slow clients are skipped rather than blocking the engine.
func (h *Hub) Broadcast(sessionID string, snapshot []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), stateChannel(sessionID), snapshot).Err()
		if err == nil {
			return
		}
		// degraded redis: fall back to local delivery
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(sessionID, snapshot)
}

// deliver fans out locally and records the snapshot for late joiners. The
// lock is held across the sends: Unregister closes Send under the same lock,
// so a disconnect can never interleave with a send. The sends are
// non-blocking, keeping the critical section short.
func (h *Hub) deliver(sessionID string, snapshot []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[sessionID] = snapshot
	for client := range h.clients[sessionID] {
		select {
		case client.Send <- snapshot:
		default:
		}
	}
}

func (h *Hub) relayRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "tracking:*:state")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(sessionIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func stateChannel(sessionID string) string {
	return "tracking:" + sessionID + ":state"
}

func sessionIDFromChannel(ch string) string {
	// tracking:{session}:state
	const prefix = "tracking:"
	const suffix = ":state"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
