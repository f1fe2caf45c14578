package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/snipgo/snip/internal/analytics"
)

// ClicksPostgresStore is a PostgreSQL implementation of analytics.ClickStore.
type ClicksPostgresStore struct {
	pool *pgxpool.Pool
}

// NewClicksPostgresStore creates a new PostgreSQL-backed click store.
func NewClicksPostgresStore(pool *pgxpool.Pool) *ClicksPostgresStore {
	return &ClicksPostgresStore{pool: pool}
}

// Insert persists one click row. A single INSERT is atomic, so a record is
// either fully stored or not stored at all.
func (s *ClicksPostgresStore) Insert(ctx context.Context, record *analytics.ClickRecord) error {
	query := `
		INSERT INTO clicks (id, code, ts, ip_address, user_agent, device_type, browser, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		record.ID,
		record.Code,
		record.Timestamp,
		record.IPAddress,
		record.UserAgent,
		string(record.DeviceType),
		record.Browser,
		nullable(record.Referrer),
	)

	return err
}

func (s *ClicksPostgresStore) CountByCode(ctx context.Context, code string) (int64, error) {
	var count int64

	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM clicks WHERE code = $1`, code,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *ClicksPostgresStore) Recent(ctx context.Context, code string, limit int) ([]*analytics.ClickRecord, error) {
	query := `
		SELECT id, code, ts, ip_address, user_agent, device_type, browser, referrer
		FROM clicks
		WHERE code = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*analytics.ClickRecord, 0)

	for rows.Next() {
		var (
			record   analytics.ClickRecord
			referrer *string
		)

		err := rows.Scan(
			&record.ID,
			&record.Code,
			&record.Timestamp,
			&record.IPAddress,
			&record.UserAgent,
			&record.DeviceType,
			&record.Browser,
			&referrer,
		)
		if err != nil {
			return nil, err
		}

		if referrer != nil {
			record.Referrer = *referrer
		}

		result = append(result, &record)
	}

	return result, rows.Err()
}

func (s *ClicksPostgresStore) ClicksPerDay(ctx context.Context, code string) ([]analytics.DayCount, error) {
	query := `
		SELECT to_char(ts AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*)
		FROM clicks
		WHERE code = $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := s.pool.Query(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]analytics.DayCount, 0)

	for rows.Next() {
		var dc analytics.DayCount

		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}

		result = append(result, dc)
	}

	return result, rows.Err()
}

func (s *ClicksPostgresStore) ClicksPerDevice(ctx context.Context, code string) ([]analytics.LabelCount, error) {
	return s.groupBy(ctx, code, "device_type")
}

func (s *ClicksPostgresStore) ClicksPerBrowser(ctx context.Context, code string) ([]analytics.LabelCount, error) {
	return s.groupBy(ctx, code, "browser")
}

func (s *ClicksPostgresStore) groupBy(ctx context.Context, code, column string) ([]analytics.LabelCount, error) {
	// column is one of two fixed identifiers, never caller input.
	query := `
		SELECT ` + column + `, count(*)
		FROM clicks
		WHERE code = $1
		GROUP BY ` + column + `
		ORDER BY count(*) DESC, ` + column + `
	`

	rows, err := s.pool.Query(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]analytics.LabelCount, 0)

	for rows.Next() {
		var lc analytics.LabelCount

		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}

		result = append(result, lc)
	}

	return result, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.ClickStore = (*ClicksPostgresStore)(nil)
