package modelcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
)

const createTable = `CREATE TABLE IF NOT EXISTS energy_evolution_models (
	energy_type TEXT PRIMARY KEY,
	model JSONB NOT NULL,
	fitted_at TIMESTAMPTZ NOT NULL
)`

const selectModel = `SELECT model, fitted_at FROM energy_evolution_models WHERE energy_type = $1`

const upsertModel = `INSERT INTO energy_evolution_models (energy_type, model, fitted_at)
VALUES ($1, $2, $3)
ON CONFLICT (energy_type) DO UPDATE SET model = EXCLUDED.model, fitted_at = EXCLUDED.fitted_at`

// SQLStore keeps entries in the energy_evolution_models table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore connects to PostgreSQL and creates the table if needed.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres model cache requires a DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open model cache database: %w", err)
	}
	store := NewSQLStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the table when it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create model cache table: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, energy evolution.EnergyType) (Entry, bool, error) {
	var (
		raw      []byte
		fittedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, selectModel, string(energy)).Scan(&raw, &fittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cached model for %s: %w", energy, err)
	}

	entry := Entry{FittedAt: fittedAt}
	if err := json.Unmarshal(raw, &entry.Model); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cached model for %s: %w", energy, err)
	}
	return entry, true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, energy evolution.EnergyType, entry Entry) error {
	raw, err := json.Marshal(entry.Model)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertModel, string(energy), raw, entry.FittedAt); err != nil {
		return fmt.Errorf("failed to cache model for %s: %w", energy, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
