package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// to_jsonb lets one query serve tables that name the phone column differently.
const findByPhoneSQL = `
	SELECT to_jsonb(p)::text
	FROM patient AS p
	WHERE to_jsonb(p)->>'phone' = $1
	   OR to_jsonb(p)->>'phone_number' = $1
	   OR to_jsonb(p)->>'tel' = $1
	LIMIT 1`

// PostgresStore reads the patient table directly over a pgx connection.
type PostgresStore struct {
	db   Querier
	opts storeOptions
}

// NewPostgresStore creates a store on db.
func NewPostgresStore(db Querier, opts ...StoreOption) *PostgresStore {
	return &PostgresStore{db: db, opts: applyStoreOptions(opts)}
}

// FindByPhone returns the first patient whose phone, phone_number or tel
// column equals phone.
func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*Profile, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	var raw string
	err := s.db.QueryRow(ctx, findByPhoneSQL, phone).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		s.opts.observe("patients.postgres", "not_found", start)
		return nil, nil
	}
	if err != nil {
		s.opts.observe("patients.postgres", "error", start)
		return nil, fmt.Errorf("patients: query patient: %w", err)
	}
	s.opts.observe("patients.postgres", "ok", start)

	var rec map[string]any
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("patients: decode patient row: %w", err)
	}
	return FromRecord(rec), nil
}
