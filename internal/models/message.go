package models

import "time"

// ChatMessage is the wire payload relayed between room members. The time
// field is a client-supplied display timestamp and is forwarded as-is.
type ChatMessage struct {
	SenderID      int    `json:"sender_id"`
	SenderName    string `json:"sender_name,omitempty"`
	RecipientID   int    `json:"recipient_id"`
	RecipientName string `json:"recipient_name,omitempty"`
	Body          string `json:"body"`
	RoomID        string `json:"room_id"`
	Time          string `json:"time,omitempty"`
}

// Message is a persisted chat message row.
type Message struct {
	ID          int       `db:"id" json:"id"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	Body        string    `db:"body" json:"body"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
