package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/snipgo/snip/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed mapping store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts the mapping, relying on the primary key for atomicity.
// ON CONFLICT DO NOTHING plus the affected-row count turns a race between
// two creations for the same code into exactly one ErrDuplicateCode.
func (p *PostgresStore) Create(ctx context.Context, m *shortener.Mapping) error {
	query := `
		INSERT INTO mappings (code, destination, owner_id, created_at, expires_at, click_count)
		VALUES ($1, $2, $3, $4, $5, 0)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(m.Code),
		m.Destination,
		string(m.Owner),
		m.CreatedAt,
		m.ExpiresAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrDuplicateCode
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT code, destination, owner_id, created_at, expires_at, deleted_at, click_count
		FROM mappings
		WHERE code = $1
	`

	mapping, err := scanMapping(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return mapping, nil
}

// IncrementClicks bumps the cached counter in a single UPDATE so concurrent
// redirects on a popular code never lose updates.
func (p *PostgresStore) IncrementClicks(ctx context.Context, code shortener.Code) error {
	query := `
		UPDATE mappings
		SET click_count = click_count + 1
		WHERE code = $1
	`

	tag, err := p.pool.Exec(ctx, query, string(code))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) ListByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	query := `
		SELECT code, destination, owner_id, created_at, expires_at, deleted_at, click_count
		FROM mappings
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*shortener.Mapping, 0)

	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, mapping)
	}

	return result, rows.Err()
}

func (p *PostgresStore) Delete(ctx context.Context, code shortener.Code, owner shortener.OwnerID) error {
	query := `
		UPDATE mappings
		SET deleted_at = now()
		WHERE code = $1 AND owner_id = $2 AND deleted_at IS NULL
	`

	tag, err := p.pool.Exec(ctx, query, string(code), string(owner))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func scanMapping(row pgx.Row) (*shortener.Mapping, error) {
	var m shortener.Mapping

	err := row.Scan(
		&m.Code,
		&m.Destination,
		&m.Owner,
		&m.CreatedAt,
		&m.ExpiresAt,
		&m.DeletedAt,
		&m.ClickCount,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
