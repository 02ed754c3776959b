package realtime

import (
	"encoding/json"
	"log"

	"foodcycle-realtime/internal/models"
	"foodcycle-realtime/internal/observability"
)

// Wire event names.
const (
	EventJoinRoom             = "join_room"
	EventLeaveRoom            = "leave_room"
	EventSendMessage          = "send_message"
	EventNewDonation          = "new_donation"
	EventReceiveMessage       = "receive_message"
	EventDonationNotification = "donation_notification"
)

// Envelope is the JSON frame exchanged over the transport.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// HandlerFunc processes one inbound event for a connection.
type HandlerFunc func(c *Client, data json.RawMessage)

// Dispatcher routes inbound frames to event handlers. Handlers operate on
// hub state and payload only, so the whole protocol can be driven without a
// live transport.
type Dispatcher struct {
	hub      *Hub
	relay    *Relay
	handlers map[string]HandlerFunc
}

// NewDispatcher builds a Dispatcher with the standard event table.
func NewDispatcher(hub *Hub, relay *Relay) *Dispatcher {
	d := &Dispatcher{hub: hub, relay: relay}
	d.handlers = map[string]HandlerFunc{
		EventJoinRoom:    d.handleJoinRoom,
		EventLeaveRoom:   d.handleLeaveRoom,
		EventSendMessage: d.handleSendMessage,
		EventNewDonation: d.handleNewDonation,
	}
	return d
}

// Dispatch parses one inbound frame and invokes its handler. Unparseable
// frames and unknown events are dropped; neither tears down the connection.
func (d *Dispatcher) Dispatch(c *Client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("dispatch: bad frame conn=%s: %v", c.ID, err)
		observability.IncWSEvent("bad_frame")
		return
	}

	handler, ok := d.handlers[env.Event]
	if !ok {
		log.Printf("dispatch: unknown event %q conn=%s", env.Event, c.ID)
		observability.IncWSEvent("unknown_event")
		return
	}
	handler(c, env.Data)
}

type roomRef struct {
	RoomID string `json:"room_id"`
}

func (d *Dispatcher) handleJoinRoom(c *Client, data json.RawMessage) {
	var ref roomRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.RoomID == "" {
		log.Printf("dispatch: join_room without room id conn=%s", c.ID)
		return
	}
	d.hub.Join(c.ID, ref.RoomID)
	observability.IncWSEvent(EventJoinRoom)
}

func (d *Dispatcher) handleLeaveRoom(c *Client, data json.RawMessage) {
	var ref roomRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.RoomID == "" {
		log.Printf("dispatch: leave_room without room id conn=%s", c.ID)
		return
	}
	d.hub.Leave(c.ID, ref.RoomID)
	observability.IncWSEvent(EventLeaveRoom)
}

func (d *Dispatcher) handleSendMessage(c *Client, data json.RawMessage) {
	var msg models.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("dispatch: bad send_message payload conn=%s: %v", c.ID, err)
		observability.IncRelayDropped("malformed")
		return
	}
	d.relay.Relay(msg)
}

// handleNewDonation forwards the payload verbatim to every connection. The
// donation schema belongs to the donation API; this layer does not inspect it.
func (d *Dispatcher) handleNewDonation(c *Client, data json.RawMessage) {
	d.hub.BroadcastDonation(data)
	observability.IncWSEvent(EventNewDonation)
}
