package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rubyruby/relay/internal/models"
)

type GroupStore struct {
	pool *pgxpool.Pool
}

func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

// Create inserts the group and its owner's membership in one transaction,
// so a group can never exist without at least its creator as a member.
func (s *GroupStore) Create(ctx context.Context, name, owner string) (*models.Group, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var g models.Group
	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, created_at)
		VALUES ($1, now())
		RETURNING id, name, created_at`, name).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, username)
		VALUES ($1, $2)`, g.ID, owner)
	if err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit group: %w", err)
	}
	return &g, nil
}

func (s *GroupStore) Join(ctx context.Context, groupID int64, username string) error {
	// ON CONFLICT DO NOTHING makes join idempotent: a duplicate
	// (group_id, username) is a silent no-op, not a constraint error.
	query := `
		INSERT INTO group_members (group_id, username)
		VALUES ($1, $2)
		ON CONFLICT (group_id, username) DO NOTHING`

	_, err := s.pool.Exec(ctx, query, groupID, username)
	if err != nil {
		return fmt.Errorf("join group: %w", err)
	}
	return nil
}

func (s *GroupStore) Members(ctx context.Context, groupID int64) ([]string, error) {
	query := `
		SELECT username FROM group_members
		WHERE group_id = $1`

	rows, err := s.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

func (s *GroupStore) GroupsOf(ctx context.Context, username string) ([]models.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.username = $1
		ORDER BY g.id`

	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}
