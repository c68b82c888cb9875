package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"chatwire/internal/core/domain"
)

type ConversationRepository struct {
	client *Client
}

func NewConversationRepository(client *Client) *ConversationRepository {
	return &ConversationRepository{client: client}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation, participants []domain.UserID) error {
	tx, err := r.client.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, name, type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, conv.ID, conv.Name, conv.Type, conv.CreatedBy, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return err
	}

	for _, userID := range participants {
		_, err = tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id)
			VALUES ($1, $2)
		`, conv.ID, userID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ConversationRepository) GetByID(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := r.client.pool.QueryRow(ctx, `
		SELECT id, name, type, created_by, created_at, updated_at
		FROM conversations WHERE id = $1
	`, id).Scan(&conv.ID, &conv.Name, &conv.Type, &conv.CreatedBy, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (r *ConversationRepository) FindDirect(ctx context.Context, a, b domain.UserID) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := r.client.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.type, c.created_by, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants pa ON pa.conversation_id = c.id AND pa.user_id = $1
		JOIN conversation_participants pb ON pb.conversation_id = c.id AND pb.user_id = $2
		WHERE c.type = 'direct'
		LIMIT 1
	`, a, b).Scan(&conv.ID, &conv.Name, &conv.Type, &conv.CreatedBy, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.ConversationSummary, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT
			c.id, c.name, c.type, c.created_by, c.created_at, c.updated_at,
			lm.content, lm.created_at,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.conversation_id = c.id
				  AND m.sender_id <> $1
				  AND NOT EXISTS (
					SELECT 1 FROM message_reads mr
					WHERE mr.message_id = m.id AND mr.user_id = $1
				  )
			) AS unread_count,
			u.id, u.username, u.first_name, u.last_name, u.avatar_url, u.status, u.last_seen, u.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT content, created_at FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC LIMIT 1
		) lm ON TRUE
		LEFT JOIN conversation_participants op
			ON op.conversation_id = c.id AND op.user_id <> $1 AND c.type = 'direct'
		LEFT JOIN users u ON u.id = op.user_id
		ORDER BY COALESCE(lm.created_at, c.updated_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.ConversationSummary
	for rows.Next() {
		summary := &domain.ConversationSummary{}
		var lastMessage *string
		var participant nullableUser
		err := rows.Scan(
			&summary.ID, &summary.Name, &summary.Type, &summary.CreatedBy,
			&summary.CreatedAt, &summary.UpdatedAt,
			&lastMessage, &summary.LastMessageTime,
			&summary.UnreadCount,
			&participant.id, &participant.username, &participant.firstName,
			&participant.lastName, &participant.avatarURL, &participant.status,
			&participant.lastSeen, &participant.createdAt,
		)
		if err != nil {
			return nil, err
		}
		if lastMessage != nil {
			summary.LastMessage = *lastMessage
		}
		summary.Participant = participant.user()
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (r *ConversationRepository) IsParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID) (bool, error) {
	var exists, member bool
	err := r.client.pool.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM conversations WHERE id = $1),
			EXISTS (SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2)
	`, id, userID).Scan(&exists, &member)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrConversationNotFound
	}
	return member, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, id domain.ConversationID) error {
	tag, err := r.client.pool.Exec(ctx, `
		UPDATE conversations SET updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}
