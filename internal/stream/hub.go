package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope pushed to a user's devices.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// outboundSize bounds the events waiting for a Redis publish.
const outboundSize = 256

type Hub struct {
	redis    *redis.Client
	prefix   string
	pubsub   *redis.PubSub
	outbound chan outbound
	done     chan struct{}
	once     sync.Once
	clients  map[string]map[*Client]struct{}
	mu       sync.RWMutex
}

type outbound struct {
	userID  string
	payload []byte
}

type Client struct {
	UserID string
	Send   chan []byte
}

// NewHub fans events out to local clients. With a reachable Redis, events
// travel through pub/sub so every replica delivers to its own clients.
func NewHub(redisClient *redis.Client, prefix string) *Hub {
	h := &Hub{
		prefix:  prefix,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		pubsub := redisClient.PSubscribe(ctx, h.channel("*"))
		if _, err := pubsub.Receive(ctx); err != nil {
			logger.Warn("stream: redis subscribe failed, using local delivery: %v", err)
			_ = pubsub.Close()
			return h
		}
		h.redis = redisClient
		h.pubsub = pubsub
		h.outbound = make(chan outbound, outboundSize)
		h.done = make(chan struct{})
		go h.forward(pubsub.Channel())
		go h.publishLoop()
	}
	return h
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client]; !ok {
		return
	}
	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// Broadcast delivers payload to every client of userID without blocking.
// Redis publishes are queued; when the queue is full the event is dropped.
// Slow clients drop messages rather than block the sender.
func (h *Hub) Broadcast(userID string, payload []byte) {
	if h.outbound == nil {
		h.deliver(userID, payload)
		return
	}
	select {
	case h.outbound <- outbound{userID: userID, payload: payload}:
	default:
		logger.Warn("stream: outbound queue full, dropping event for %s", userID)
	}
}

// Publish encodes ev and broadcasts it.
func (h *Hub) Publish(userID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Broadcast(userID, payload)
	return nil
}

// Clients reports how many connections userID currently has.
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) Close() error {
	if h.done != nil {
		h.once.Do(func() { close(h.done) })
	}
	if h.pubsub != nil {
		return h.pubsub.Close()
	}
	return nil
}

// publishLoop drains the outbound queue into Redis. A failed publish falls
// back to this replica's clients.
func (h *Hub) publishLoop() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.outbound:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := h.redis.Publish(ctx, h.channel(msg.userID), msg.payload).Err()
			cancel()
			if err != nil {
				logger.Warn("stream: redis publish error: %v", err)
				h.deliver(msg.userID, msg.payload)
			}
		}
	}
}

func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) forward(messages <-chan *redis.Message) {
	for msg := range messages {
		userID := h.userIDFromChannel(msg.Channel)
		if userID == "" {
			continue
		}
		h.deliver(userID, []byte(msg.Payload))
	}
}

func (h *Hub) channel(userID string) string {
	return h.prefix + ":events:" + userID
}

func (h *Hub) userIDFromChannel(ch string) string {
	// {prefix}:events:{user}
	base := h.prefix + ":events:"
	if !strings.HasPrefix(ch, base) || len(ch) == len(base) {
		return ""
	}
	return ch[len(base):]
}
