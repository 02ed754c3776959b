package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"foodcycle-realtime/internal/observability"
)

const defaultSendBuffer = 256

// Hub owns all connection and room state: which connections are admitted,
// which rooms each has joined, and who is in each room. Rooms are ephemeral
// routing scopes; one with no members is deleted immediately. All mutation
// goes through the single coarse lock, so every operation observes a
// sequentially consistent view.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]bool
	joined  map[string]map[string]bool

	sendBuffer int
}

// NewHub creates an empty hub. sendBuffer sizes each client's outbound
// queue; zero means the default.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		joined:     make(map[string]map[string]bool),
		sendBuffer: sendBuffer,
	}
}

// RoomIDFor derives the room id shared by two user identities. The smaller
// id always comes first, so both sides converge on the same room without a
// discovery step.
func RoomIDFor(userA, userB int) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d-%d", userA, userB)
}

// Admit registers a new connection and returns it with a fresh id and an
// empty joined-rooms set.
func (h *Hub) Admit(meta ConnMeta) *Client {
	client := &Client{
		ID:          newConnID(),
		Send:        make(chan []byte, h.sendBuffer),
		Meta:        meta,
		ConnectedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.joined[client.ID] = make(map[string]bool)
	return client
}

// Remove drops a connection from every room it joined, discards its record
// and closes its outbound queue. Removing an unknown connection is a no-op.
// It returns the rooms the connection was a member of.
func (h *Hub) Remove(connID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return nil
	}

	var left []string
	for roomID := range h.joined[connID] {
		left = append(left, roomID)
		h.dropMember(roomID, connID)
	}
	delete(h.joined, connID)
	delete(h.clients, connID)
	close(client.Send)
	return left
}

// Join adds the connection to the room, creating the room on first join.
// Joining twice, or joining on an unknown connection, has no effect.
func (h *Hub) Join(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		return
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][connID] = true
	h.joined[connID][roomID] = true
}

// Leave removes the connection from the room. Leaving a room the connection
// never joined is a no-op.
func (h *Hub) Leave(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropMember(roomID, connID)
	if rooms, ok := h.joined[connID]; ok {
		delete(rooms, roomID)
	}
}

// dropMember removes connID from roomID and deletes the room when it empties.
// Caller must hold the write lock.
func (h *Hub) dropMember(roomID, connID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// MembersOf returns the connection ids currently in the room; empty for an
// unknown room.
func (h *Hub) MembersOf(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, 0, len(h.rooms[roomID]))
	for connID := range h.rooms[roomID] {
		members = append(members, connID)
	}
	return members
}

// ClientCount reports the number of admitted connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DeliverRoom queues the payload on every member of the room and returns the
// delivery count. A member whose queue is full is skipped; the rest still
// receive the payload.
func (h *Hub) DeliverRoom(roomID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID := range h.rooms[roomID] {
		if h.trySend(h.clients[connID], payload) {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll queues the payload on every admitted connection regardless of
// room membership and returns the delivery count.
func (h *Hub) BroadcastAll(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if h.trySend(client, payload) {
			delivered++
		}
	}
	return delivered
}

// BroadcastDonation fans the opaque donation payload out to every connection
// as a donation_notification event.
func (h *Hub) BroadcastDonation(data json.RawMessage) int {
	payload, _ := json.Marshal(Envelope{Event: EventDonationNotification, Data: data})
	delivered := h.BroadcastAll(payload)
	observability.AddBroadcastDelivered(delivered)
	return delivered
}

// trySend queues the payload without blocking. Caller must hold at least the
// read lock, which excludes Remove closing the channel mid-send.
func (h *Hub) trySend(client *Client, payload []byte) bool {
	if client == nil {
		return false
	}
	select {
	case client.Send <- payload:
		return true
	default:
		observability.IncDeliverySkipped()
		return false
	}
}
