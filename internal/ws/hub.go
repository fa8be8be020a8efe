package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vitalwatch/api/internal/model"
)

const redisChannel = "vitalwatch:events"

// Hub manages all WebSocket subscribers and event broadcasting.
// It uses Redis Pub/Sub for horizontal scaling across multiple instances.
//
// Publishing is fire-and-forget: a slow or absent subscriber never blocks
// the ingestion pipeline, and events may be dropped when a subscriber
// cannot keep up.
type Hub struct {
	// Map of userID -> set of client connections (one user can have
	// multiple dashboard tabs)
	clients map[uuid.UUID]map[*Client]bool
	mu      sync.RWMutex

	// Channels for registering/unregistering clients
	register   chan *Client
	unregister chan *Client

	// Channel feeding the publish loop; sends never block
	outbound chan *TargetedEvent

	// Redis client for Pub/Sub (horizontal scaling)
	rdb *redis.Client
}

// NewHub creates a new WebSocket Hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan *TargetedEvent, 256),
		rdb:        rdb,
	}
}

// Run starts the Hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	// Start Redis subscriber in a goroutine
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case targeted := <-h.outbound:
			h.publishToRedis(targeted)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Broadcast queues an event for delivery to every connected subscriber on
// every instance. Never blocks: when the outbound buffer is full the event
// is dropped.
func (h *Hub) Broadcast(event *model.WSEvent) {
	h.enqueue(&TargetedEvent{Event: event})
}

// SendToUser queues an event for one user (all their connections)
func (h *Hub) SendToUser(userID uuid.UUID, event *model.WSEvent) {
	h.enqueue(&TargetedEvent{TargetUserID: userID, Event: event})
}

// SendToUsers queues an event for multiple users
func (h *Hub) SendToUsers(userIDs []uuid.UUID, event *model.WSEvent) {
	for _, userID := range userIDs {
		h.SendToUser(userID, event)
	}
}

func (h *Hub) enqueue(targeted *TargetedEvent) {
	select {
	case h.outbound <- targeted:
	default:
		log.Printf("⚠️  Event buffer full, dropping %s event", targeted.Event.Type)
	}
}

// addClient registers a new client connection
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("✅ Subscriber connected: %s (connections: %d)", client.UserID, len(h.clients[client.UserID]))
}

// removeClient unregisters a client connection. This is the only place
// client.send is ever closed; a repeated unregister is a no-op.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, registered := clients[client]; !registered {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
	log.Printf("❌ Subscriber disconnected: %s", client.UserID)
}

// sendToLocalUser sends an event to a user on this instance only
func (h *Hub) sendToLocalUser(userID uuid.UUID, event *model.WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Error marshaling event: %v", err)
			return
		}
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Send buffer full, drop the event; the read pump
				// unregisters the client when the connection dies
				log.Printf("⚠️  Subscriber %s not keeping up, dropping event", userID)
			}
		}
	}
}

// broadcastToLocal sends an event to all connected local clients
func (h *Hub) broadcastToLocal(event *model.WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling broadcast event: %v", err)
		return
	}

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				log.Printf("⚠️  Subscriber %s not keeping up, dropping event", client.UserID)
			}
		}
	}
}

// SubscriberCount returns the number of users connected to this instance
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ========== Redis Pub/Sub for Horizontal Scaling ==========

// TargetedEvent wraps an event with an optional target user ID for
// Redis Pub/Sub
type TargetedEvent struct {
	TargetUserID uuid.UUID      `json:"target_user_id,omitempty"`
	Event        *model.WSEvent `json:"event"`
}

// publishToRedis publishes an event for every instance to deliver. When
// Redis is unavailable the event is still delivered to local subscribers.
func (h *Hub) publishToRedis(targeted *TargetedEvent) {
	jsonData, err := json.Marshal(targeted)
	if err != nil {
		log.Printf("Error marshaling for Redis: %v", err)
		return
	}

	if err := h.rdb.Publish(context.Background(), redisChannel, jsonData).Err(); err != nil {
		log.Printf("Error publishing to Redis: %v", err)
		h.deliverLocal(targeted)
	}
}

func (h *Hub) deliverLocal(targeted *TargetedEvent) {
	if targeted.Event == nil {
		return
	}
	if targeted.TargetUserID != uuid.Nil {
		h.sendToLocalUser(targeted.TargetUserID, targeted.Event)
		return
	}
	h.broadcastToLocal(targeted.Event)
}

// subscribeRedis subscribes to Redis and delivers events to local clients
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var targeted TargetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &targeted); err != nil {
				log.Printf("Error unmarshaling Redis message: %v", err)
				continue
			}
			h.deliverLocal(&targeted)
		}
	}
}
