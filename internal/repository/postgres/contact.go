package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactStore struct {
	pool *pgxpool.Pool
}

func NewContactStore(pool *pgxpool.Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

func (s *ContactStore) Add(ctx context.Context, owner, contact string) error {
	query := `
		INSERT INTO contacts (owner, contact)
		VALUES ($1, $2)
		ON CONFLICT (owner, contact) DO NOTHING`

	_, err := s.pool.Exec(ctx, query, owner, contact)
	if err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	return nil
}

func (s *ContactStore) ListByOwner(ctx context.Context, owner string) ([]string, error) {
	query := `
		SELECT contact FROM contacts
		WHERE owner = $1
		ORDER BY contact`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	return contacts, nil
}
