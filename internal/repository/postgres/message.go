package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rubyruby/relay/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Append(ctx context.Context, sender string, targetType models.TargetType, target, text string) (*models.Message, error) {
	// id is a bigserial and created_at is now(): both assigned inside
	// Postgres, never by the caller. RETURNING hands them back so the
	// relay can log what was actually stored.
	query := `
		INSERT INTO messages (sender, target_type, target, text, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, sender, target_type, target, text, created_at`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, sender, string(targetType), target, text).Scan(
		&msg.ID,
		&msg.Sender,
		&msg.TargetType,
		&msg.Target,
		&msg.Text,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (s *MessageStore) History(ctx context.Context, username string, targetType models.TargetType, target string) ([]models.Message, error) {
	// ORDER BY id, not created_at: the sequence is the conversation
	// order and is immune to server clock adjustments.
	var query string
	var args []any

	if targetType == models.TargetUser {
		// Both directions of the pair, so history(A,B) == history(B,A).
		query = `
			SELECT id, sender, target_type, target, text, created_at
			FROM messages
			WHERE target_type = 'user'
			  AND ((sender = $1 AND target = $2) OR (sender = $2 AND target = $1))
			ORDER BY id`
		args = []any{username, target}
	} else {
		// No membership filter here: delivery-time fan-out is where
		// membership is consulted, not history reads.
		query = `
			SELECT id, sender, target_type, target, text, created_at
			FROM messages
			WHERE target_type = 'group' AND target = $1
			ORDER BY id`
		args = []any{target}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.Sender,
			&msg.TargetType,
			&msg.Target,
			&msg.Text,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
