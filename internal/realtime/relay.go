package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"foodcycle-realtime/internal/models"
	"foodcycle-realtime/internal/observability"
)

// MessageStore is the optional persistence collaborator for chat history.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg models.ChatMessage) error
}

const persistTimeout = 5 * time.Second

// Relay validates chat messages and forwards them to their room. Delivery
// goes to the whole room including the sender's own sessions; the sender's
// client renders its copy optimistically and rooms have two participants, so
// membership is the only filter.
type Relay struct {
	hub   *Hub
	store MessageStore
}

// NewRelay constructs a Relay. store may be nil, in which case no history is
// kept.
func NewRelay(hub *Hub, store MessageStore) *Relay {
	return &Relay{hub: hub, store: store}
}

// Relay forwards the message to every current member of its room and returns
// the delivery count. Invalid messages are dropped before any delivery or
// persistence happens. Persistence runs in the background; a store failure is
// logged and never affects delivery.
func (r *Relay) Relay(msg models.ChatMessage) int {
	if strings.TrimSpace(msg.Body) == "" {
		log.Printf("relay: dropped empty message room=%s sender=%d", msg.RoomID, msg.SenderID)
		observability.IncRelayDropped("empty_body")
		return 0
	}
	if msg.SenderID == 0 || msg.RecipientID == 0 || msg.RoomID == "" {
		log.Printf("relay: dropped malformed message room=%q sender=%d recipient=%d", msg.RoomID, msg.SenderID, msg.RecipientID)
		observability.IncRelayDropped("malformed")
		return 0
	}

	payload, _ := json.Marshal(outboundMessage{Event: EventReceiveMessage, Data: msg})
	delivered := r.hub.DeliverRoom(msg.RoomID, payload)
	observability.AddRelayDelivered(delivered)

	if r.store != nil {
		go r.persist(msg)
	}
	return delivered
}

func (r *Relay) persist(msg models.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.SaveMessage(ctx, msg); err != nil {
		log.Printf("relay: persist message failed sender=%d recipient=%d: %v", msg.SenderID, msg.RecipientID, err)
		observability.IncPersistFailure()
	}
}

type outboundMessage struct {
	Event string             `json:"event"`
	Data  models.ChatMessage `json:"data"`
}
