package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"foodcycle-realtime/internal/models"
)

// MessageRepository persists chat history. SaveMessage is the relay's
// best-effort persistence hook; a failure there never blocks delivery.
type MessageRepository interface {
	SaveMessage(ctx context.Context, msg models.ChatMessage) error
	ListConversation(ctx context.Context, userA, userB int) ([]models.Message, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// SaveMessage stores a relayed chat message.
func (r *MessageRepo) SaveMessage(ctx context.Context, msg models.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, body) VALUES ($1, $2, $3)`,
		msg.SenderID, msg.RecipientID, msg.Body)
	return err
}

// ListConversation returns the message history between two users in both
// directions, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userA, userB int) ([]models.Message, error) {
	query := `SELECT id, sender_id, recipient_id, body, read, created_at
        FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB)
	return msgs, err
}
