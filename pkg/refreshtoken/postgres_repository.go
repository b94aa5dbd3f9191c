package refreshtoken

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based refresh token repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get looks up a record by token id
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `SELECT token_id, subject_id, secret_hash, used, predecessor_id, issued_at, expires_at
		FROM refresh_token WHERE token_id = $1`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.TokenID, &rec.Subject, &rec.SecretHash, &rec.Used, &rec.PredecessorID, &rec.IssuedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrTokenNotFound
		}
		return Record{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return rec, nil
}

const insertRecord = `INSERT INTO refresh_token (token_id, subject_id, secret_hash, used, predecessor_id, issued_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Create persists a new record
func (r *PostgresRepository) Create(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, insertRecord,
		rec.TokenID, rec.Subject, rec.SecretHash, rec.Used, rec.PredecessorID, rec.IssuedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Consume marks the record used and inserts its successor in one transaction.
// The UPDATE carries the compare-and-set: a concurrent redemption that got
// there first leaves zero rows affected and the transaction is abandoned.
func (r *PostgresRepository) Consume(ctx context.Context, id uuid.UUID, successor Record) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE refresh_token SET used = TRUE WHERE token_id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, insertRecord,
		successor.TokenID, successor.Subject, successor.SecretHash, successor.Used,
		successor.PredecessorID, successor.IssuedAt, successor.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("error committing transaction: %w", err)
	}
	return true, nil
}

// DeleteChain removes the record and all descendants reachable through
// predecessor links
func (r *PostgresRepository) DeleteChain(ctx context.Context, id uuid.UUID) error {
	query := `WITH RECURSIVE chain AS (
			SELECT token_id FROM refresh_token WHERE token_id = $1
			UNION ALL
			SELECT rt.token_id FROM refresh_token rt
			JOIN chain c ON rt.predecessor_id = c.token_id
		)
		DELETE FROM refresh_token WHERE token_id IN (SELECT token_id FROM chain)`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// DeleteBySubject removes every record belonging to the subject
func (r *PostgresRepository) DeleteBySubject(ctx context.Context, subject uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_token WHERE subject_id = $1`, subject)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
