package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ConnMeta carries transport-level identity captured at handshake time. It is
// attached to observability events for the connection's lifetime.
type ConnMeta struct {
	IP        string
	DeviceID  string
	RequestID string
	TraceID   string
}

// Client is one live connection admitted by the hub. Outbound frames are
// queued on Send and drained by the transport's writer; the hub never writes
// to the network itself.
type Client struct {
	ID          string
	Send        chan []byte
	Meta        ConnMeta
	ConnectedAt time.Time
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
