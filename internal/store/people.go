package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerIDByEmail looks up a customer by exact email match. The match is
// case-sensitive as stored, mirroring the CRM's own uniqueness rules.
func (s *Store) CustomerIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error) {
	return s.personIDByEmail(ctx, "customers", email)
}

// LeadIDByEmail looks up a lead by exact email match.
func (s *Store) LeadIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error) {
	return s.personIDByEmail(ctx, "leads", email)
}

func (s *Store) personIDByEmail(ctx context.Context, table, email string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE email = $1 LIMIT 1`, table),
		email,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup %s by email: %w", table, err)
	}
	return id, true, nil
}
