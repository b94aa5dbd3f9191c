package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for identity-related database operations
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Identity, error)
	GetByUsername(ctx context.Context, username string) (Identity, error)
	Create(ctx context.Context, params CreateIdentityParams) (Identity, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	// Disable soft-disables an identity. The record is kept so that
	// sessions referencing it keep resolving; login and refresh reject it.
	Disable(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based identity repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const identityColumns = `id, username, password_hash, role, disabled, created_at, updated_at`

// Get retrieves an identity by ID
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identity WHERE id = $1`
	return r.scanIdentity(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername retrieves an identity by username
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identity WHERE username = $1`
	return r.scanIdentity(r.pool.QueryRow(ctx, query, username))
}

// Create creates a new identity
func (r *PostgresRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	query := `INSERT INTO identity (id, username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + identityColumns
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, query, uuid.New(), params.Username, params.PasswordHash, params.Role, now)
	ident, err := r.scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Identity{}, ErrUsernameTaken
		}
		return Identity{}, err
	}
	return ident, nil
}

// UpdatePassword replaces the stored password hash
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE identity SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash, time.Now().UTC())
}

// UpdateRole replaces the stored role
func (r *PostgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	query := `UPDATE identity SET role = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, query, id, role, time.Now().UTC())
}

// Disable soft-disables an identity
func (r *PostgresRepository) Disable(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE identity SET disabled = TRUE, updated_at = $2 WHERE id = $1`
	return r.exec(ctx, query, id, time.Now().UTC())
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (r *PostgresRepository) scanIdentity(row pgx.Row) (Identity, error) {
	var ident Identity
	err := row.Scan(&ident.ID, &ident.Username, &ident.PasswordHash, &ident.Role, &ident.Disabled, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, err
	}
	return ident, nil
}
