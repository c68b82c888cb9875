package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, avatar_url, status, last_seen, created_at`

type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Status,
		&user.LastSeen,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.client.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, avatar_url, status, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.AvatarURL, user.Status, user.LastSeen, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return scanUser(r.client.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.client.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1
	`, username))
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserListFilter) ([]*domain.User, error) {
	pattern := "%" + filter.Search + "%"
	rows, err := r.client.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id <> $1
		  AND ($2 = '' OR username ILIKE $3 OR first_name ILIKE $3 OR last_name ILIKE $3)
		ORDER BY username
		LIMIT $4 OFFSET $5
	`, filter.ExcludeID, filter.Search, pattern, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) ListOnline(ctx context.Context, excludeID domain.UserID) ([]*domain.User, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id <> $1 AND status = 'online'
		ORDER BY username
	`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id domain.UserID, status domain.UserStatus) (*domain.User, error) {
	return scanUser(r.client.pool.QueryRow(ctx, `
		UPDATE users SET status = $2, last_seen = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, status))
}

func (r *UserRepository) Stats(ctx context.Context, id domain.UserID) (*domain.UserStats, error) {
	stats := &domain.UserStats{}
	err := r.client.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE sender_id = $1),
			(SELECT COUNT(*) FROM conversation_participants WHERE user_id = $1)
	`, id).Scan(&stats.MessageCount, &stats.ConversationCount)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func collectUsers(rows pgx.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
