package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans journey updates out to websocket subscribers. Every walk mutation
// publishes the owner's fresh progress so open map views move their marker
// without polling. Redis pub/sub carries broadcasts across instances; without
// Redis the hub still serves subscribers on this instance.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	JourneyID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(journeyID string) *Client {
	client := &Client{
		JourneyID: journeyID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[journeyID] == nil {
		h.clients[journeyID] = map[*Client]struct{}{}
	}
	h.clients[journeyID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if journeyClients, ok := h.clients[client.JourneyID]; ok {
		delete(journeyClients, client)
		if len(journeyClients) == 0 {
			delete(h.clients, client.JourneyID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(journeyID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[journeyID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(journeyID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "journey:*:progress")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		journeyID := journeyIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[journeyID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(journeyID string) string {
	return "journey:" + journeyID + ":progress"
}

func journeyIDFromChannel(ch string) string {
	// journey:{id}:progress
	const prefix = "journey:"
	const suffix = ":progress"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
