package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CandidateRepository answers existence checks against the candidate
// directory. Credential and profile management are external concerns.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Exists reports whether a candidate id is known.
func (r *CandidateRepository) Exists(ctx context.Context, candidateID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1)`, candidateID,
	).Scan(&exists)
	return exists, err
}
