// Package realtime pushes store changes to connected websocket clients.
package realtime

import (
	"sync"

	"eic-admin/internal/features/role"
	"eic-admin/internal/features/user"
	"eic-admin/pkg/syncache"

	"go.uber.org/zap"
)

const (
	EntityRoles = "roles"
	EntityUsers = "users"
)

// Message is one change notification. Data is the new document for upserts.
type Message struct {
	Entity string             `json:"entity"`
	Kind   syncache.EventKind `json:"kind"`
	ID     string             `json:"id,omitempty"`
	Data   any                `json:"data,omitempty"`
}

// Client is a registered receiver of the entities it may read. Send is
// closed when the hub drops it.
type Client struct {
	Send     chan Message
	entities map[string]bool
}

func (c *Client) Wants(entity string) bool {
	return c.entities[entity]
}

type Hub struct {
	buffer int
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	subs    []*syncache.Subscription
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		buffer:  32,
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(entities ...string) *Client {
	c := &Client{Send: make(chan Message, h.buffer), entities: make(map[string]bool, len(entities))}
	for _, e := range entities {
		c.entities[e] = true
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast never blocks. It skips clients not entitled to msg.Entity and
// drops a client whose buffer is full.
func (h *Hub) Broadcast(msg Message) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		if !c.Wants(msg.Entity) {
			continue
		}
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("entity", msg.Entity))
		h.Unregister(c)
	}
}

// Attach forwards role and user cache events until Close.
func (h *Hub) Attach(roles role.RoleService, users user.UserService) {
	roleSub := roles.Subscribe(func(evt syncache.Event[role.Role]) {
		h.Broadcast(toMessage(EntityRoles, evt))
	})
	userSub := users.Subscribe(func(evt syncache.Event[user.User]) {
		h.Broadcast(toMessage(EntityUsers, evt))
	})

	h.mu.Lock()
	h.subs = append(h.subs, roleSub, userSub)
	h.mu.Unlock()
}

func toMessage[T any](entity string, evt syncache.Event[T]) Message {
	msg := Message{Entity: entity, Kind: evt.Kind, ID: evt.ID}
	if evt.Kind == syncache.EventUpserted {
		msg.Data = evt.Item
	}
	return msg
}

// Close unsubscribes from the stores and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	for _, c := range clients {
		h.Unregister(c)
	}
}
