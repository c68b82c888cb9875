package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"chatwire/internal/core/domain"
)

const callColumns = `c.id, c.caller_id, c.receiver_id, c.call_type, c.status,
	c.start_time, c.end_time, c.duration, c.created_at,
	ca.id, ca.username, ca.first_name, ca.last_name, ca.avatar_url, ca.status, ca.last_seen, ca.created_at,
	re.id, re.username, re.first_name, re.last_name, re.avatar_url, re.status, re.last_seen, re.created_at`

type CallRepository struct {
	client *Client
}

func NewCallRepository(client *Client) *CallRepository {
	return &CallRepository{client: client}
}

func scanCall(row pgx.Row) (*domain.Call, error) {
	call := &domain.Call{}
	var caller, receiver nullableUser
	err := row.Scan(
		&call.ID, &call.CallerID, &call.ReceiverID, &call.Type, &call.Status,
		&call.StartTime, &call.EndTime, &call.Duration, &call.CreatedAt,
		&caller.id, &caller.username, &caller.firstName, &caller.lastName,
		&caller.avatarURL, &caller.status, &caller.lastSeen, &caller.createdAt,
		&receiver.id, &receiver.username, &receiver.firstName, &receiver.lastName,
		&receiver.avatarURL, &receiver.status, &receiver.lastSeen, &receiver.createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCallNotFound
		}
		return nil, err
	}
	call.Caller = caller.user()
	call.Receiver = receiver.user()
	return call, nil
}

func (r *CallRepository) Create(ctx context.Context, call *domain.Call) error {
	_, err := r.client.pool.Exec(ctx, `
		INSERT INTO calls (id, caller_id, receiver_id, call_type, status, start_time, end_time, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, call.ID, call.CallerID, call.ReceiverID, call.Type, call.Status,
		call.StartTime, call.EndTime, call.Duration, call.CreatedAt)
	return err
}

func (r *CallRepository) GetByID(ctx context.Context, id domain.CallID) (*domain.Call, error) {
	return scanCall(r.client.pool.QueryRow(ctx, `
		SELECT `+callColumns+`
		FROM calls c
		LEFT JOIN users ca ON ca.id = c.caller_id
		LEFT JOIN users re ON re.id = c.receiver_id
		WHERE c.id = $1
	`, id))
}

func (r *CallRepository) History(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Call, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT `+callColumns+`
		FROM calls c
		LEFT JOIN users ca ON ca.id = c.caller_id
		LEFT JOIN users re ON re.id = c.receiver_id
		WHERE c.caller_id = $1 OR c.receiver_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []*domain.Call
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

func (r *CallRepository) Stats(ctx context.Context, userID domain.UserID) (*domain.CallStats, error) {
	stats := &domain.CallStats{}
	err := r.client.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('answered', 'ended') AND duration > 0),
			COALESCE(SUM(duration) FILTER (WHERE status IN ('answered', 'ended') AND duration > 0), 0)
		FROM calls
		WHERE caller_id = $1 OR receiver_id = $1
	`, userID).Scan(&stats.TotalCalls, &stats.SuccessfulCalls, &stats.TotalDuration)
	if err != nil {
		return nil, err
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT call_type, COUNT(*), COALESCE(SUM(duration), 0)
		FROM calls
		WHERE caller_id = $1 OR receiver_id = $1
		GROUP BY call_type
		ORDER BY call_type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts domain.CallTypeStats
		if err := rows.Scan(&ts.Type, &ts.Count, &ts.TotalDuration); err != nil {
			return nil, err
		}
		stats.CallsByType = append(stats.CallsByType, ts)
	}
	return stats, rows.Err()
}

func (r *CallRepository) Update(ctx context.Context, call *domain.Call) error {
	tag, err := r.client.pool.Exec(ctx, `
		UPDATE calls
		SET status = $2, start_time = $3, end_time = $4, duration = $5
		WHERE id = $1
	`, call.ID, call.Status, call.StartTime, call.EndTime, call.Duration)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCallNotFound
	}
	return nil
}

func (r *CallRepository) Delete(ctx context.Context, id domain.CallID) error {
	tag, err := r.client.pool.Exec(ctx, `DELETE FROM calls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCallNotFound
	}
	return nil
}
