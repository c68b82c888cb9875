package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"chatwire/internal/core/domain"
)

const messageColumns = `m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
	m.file_url, m.file_name, m.file_size, m.is_edited, m.edited_at, m.created_at,
	u.id, u.username, u.first_name, u.last_name, u.avatar_url, u.status, u.last_seen, u.created_at`

type MessageRepository struct {
	client *Client
}

func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{client: client}
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	msg := &domain.Message{}
	var sender nullableUser
	err := row.Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Type,
		&msg.FileURL, &msg.FileName, &msg.FileSize, &msg.IsEdited, &msg.EditedAt, &msg.CreatedAt,
		&sender.id, &sender.username, &sender.firstName, &sender.lastName,
		&sender.avatarURL, &sender.status, &sender.lastSeen, &sender.createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	msg.Sender = sender.user()
	return msg, nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.client.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type,
			file_url, file_name, file_size, is_edited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type,
		msg.FileURL, msg.FileName, msg.FileSize, msg.IsEdited, msg.CreatedAt)
	return err
}

func (r *MessageRepository) GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	return scanMessage(r.client.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1
	`, id))
}

func (r *MessageRepository) ListByConversation(ctx context.Context, convID domain.ConversationID, limit, offset int) ([]*domain.Message, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`, convID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	tag, err := r.client.pool.Exec(ctx, `
		UPDATE messages
		SET content = $2, is_edited = $3, edited_at = $4
		WHERE id = $1
	`, msg.ID, msg.Content, msg.IsEdited, msg.EditedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id domain.MessageID) error {
	tag, err := r.client.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error {
	_, err := r.client.pool.Exec(ctx, `
		INSERT INTO message_reads (message_id, user_id)
		SELECT id, $2 FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2
		ON CONFLICT DO NOTHING
	`, convID, userID)
	return err
}
