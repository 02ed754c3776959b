package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"foodcycle-realtime/internal/observability"
	"foodcycle-realtime/internal/realtime"
)

func tracer() trace.Tracer {
	return otel.Tracer("foodcycle-realtime/ws")
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	maxFrame   = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler admits websocket connections and pumps their frames through the
// event dispatcher.
type Handler struct {
	hub        *realtime.Hub
	dispatcher *realtime.Dispatcher
}

// NewHandler constructs a Handler.
func NewHandler(hub *realtime.Hub, dispatcher *realtime.Dispatcher) *Handler {
	return &Handler{hub: hub, dispatcher: dispatcher}
}

// Handle upgrades the connection, registers the client and starts its pumps.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := realtime.ConnMeta{
		IP:        observability.IPFromRequest(c.Request),
		DeviceID:  observability.DeviceIDFromRequest(c.Request),
		RequestID: observability.RequestIDFromRequest(c.Request),
		TraceID:   span.SpanContext().TraceID().String(),
	}
	client := h.hub.Admit(meta)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.connections", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(client, "ws_connect", ""),
	})

	go h.writePump(conn, client)
	go h.readPump(ctx, conn, client)
}

// readPump consumes inbound frames until the transport closes, then removes
// the client from the hub. Missing pongs count as a disconnect too.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, client *realtime.Client) {
	var closeReason string
	defer func() {
		h.hub.Remove(client.ID)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.connections", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   wsEventPayload(client, "ws_disconnect", closeReason),
		})
		conn.Close()
	}()

	conn.SetReadLimit(maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				_ = observability.PublishEvent(ctx, "ws_events.connections", observability.EventEnvelope{
					EventType: "ws_events",
					EventName: "ws_error",
					Payload:   wsEventPayload(client, "ws_error", closeReason),
				})
			}
			return
		}
		h.dispatcher.Dispatch(client, frame)
	}
}

// writePump drains the client's outbound queue to the socket and keeps the
// connection alive with pings. It exits when the hub closes the queue or a
// write fails; the read side then observes the closed socket and cleans up.
func (h *Handler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func wsEventPayload(client *realtime.Client, event, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     client.ID,
			"duration_ms": time.Since(client.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"device_id":  client.Meta.DeviceID,
			"ip":         client.Meta.IP,
			"request_id": client.Meta.RequestID,
			"trace_id":   client.Meta.TraceID,
		},
	}
}
