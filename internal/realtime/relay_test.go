package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"foodcycle-realtime/internal/models"
)

// recordingStore captures SaveMessage calls for assertions.
type recordingStore struct {
	mu    sync.Mutex
	calls []models.ChatMessage
	err   error
	saved chan struct{}
}

func newRecordingStore(err error) *recordingStore {
	return &recordingStore{err: err, saved: make(chan struct{}, 16)}
}

func (s *recordingStore) SaveMessage(ctx context.Context, msg models.ChatMessage) error {
	s.mu.Lock()
	s.calls = append(s.calls, msg)
	s.mu.Unlock()
	s.saved <- struct{}{}
	return s.err
}

func (s *recordingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingStore) waitForSave(t *testing.T) {
	t.Helper()
	select {
	case <-s.saved:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for SaveMessage")
	}
}

func validMessage() models.ChatMessage {
	return models.ChatMessage{
		SenderID:      1,
		SenderName:    "alice",
		RecipientID:   2,
		RecipientName: "bob",
		Body:          "hi",
		RoomID:        "1-2",
		Time:          "10:30:00 AM",
	}
}

func TestRelayEmptyBodyDropped(t *testing.T) {
	hub := NewHub(4)
	store := newRecordingStore(nil)
	relay := NewRelay(hub, store)

	member := hub.Admit(ConnMeta{})
	hub.Join(member.ID, "1-2")

	msg := validMessage()
	msg.Body = ""
	require.Equal(t, 0, relay.Relay(msg))
	require.Empty(t, member.Send)
	require.Equal(t, 0, store.callCount())
}

func TestRelayWhitespaceBodyDropped(t *testing.T) {
	hub := NewHub(4)
	store := newRecordingStore(nil)
	relay := NewRelay(hub, store)

	member := hub.Admit(ConnMeta{})
	hub.Join(member.ID, "1-2")

	msg := validMessage()
	msg.Body = "   "
	require.Equal(t, 0, relay.Relay(msg))
	require.Empty(t, member.Send)
	require.Equal(t, 0, store.callCount())
}

func TestRelayMalformedDropped(t *testing.T) {
	hub := NewHub(4)
	store := newRecordingStore(nil)
	relay := NewRelay(hub, store)

	msg := validMessage()
	msg.RecipientID = 0
	require.Equal(t, 0, relay.Relay(msg))
	require.Equal(t, 0, store.callCount())

	msg = validMessage()
	msg.RoomID = ""
	require.Equal(t, 0, relay.Relay(msg))
	require.Equal(t, 0, store.callCount())
}

func TestRelayDeliversToWholeRoom(t *testing.T) {
	hub := NewHub(4)
	relay := NewRelay(hub, nil)

	sender := hub.Admit(ConnMeta{})
	peer := hub.Admit(ConnMeta{})
	outsider := hub.Admit(ConnMeta{})
	hub.Join(sender.ID, "1-2")
	hub.Join(peer.ID, "1-2")
	hub.Join(outsider.ID, "3-4")

	delivered := relay.Relay(validMessage())
	require.Equal(t, 2, delivered)
	require.Len(t, sender.Send, 1, "sender's session receives its own message")
	require.Len(t, peer.Send, 1)
	require.Empty(t, outsider.Send)
}

func TestRelayPreservesSenderOrder(t *testing.T) {
	hub := NewHub(16)
	relay := NewRelay(hub, nil)

	member := hub.Admit(ConnMeta{})
	hub.Join(member.ID, "1-2")

	bodies := []string{"one", "two", "three", "four"}
	for _, body := range bodies {
		msg := validMessage()
		msg.Body = body
		relay.Relay(msg)
	}

	for _, want := range bodies {
		var out struct {
			Event string             `json:"event"`
			Data  models.ChatMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(<-member.Send, &out))
		require.Equal(t, EventReceiveMessage, out.Event)
		require.Equal(t, want, out.Data.Body)
	}
}

func TestRelayPersistsMessage(t *testing.T) {
	hub := NewHub(4)
	store := newRecordingStore(nil)
	relay := NewRelay(hub, store)

	relay.Relay(validMessage())
	store.waitForSave(t)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.calls, 1)
	require.Equal(t, "hi", store.calls[0].Body)
	require.Equal(t, 1, store.calls[0].SenderID)
	require.Equal(t, 2, store.calls[0].RecipientID)
}

func TestRelayPersistFailureNonFatal(t *testing.T) {
	hub := NewHub(4)
	store := newRecordingStore(errors.New("db down"))
	relay := NewRelay(hub, store)

	member := hub.Admit(ConnMeta{})
	hub.Join(member.ID, "1-2")

	delivered := relay.Relay(validMessage())
	store.waitForSave(t)
	require.Equal(t, 1, delivered, "delivery proceeds when persistence fails")
}
