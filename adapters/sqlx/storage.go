package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"mathquest/store"
)

// Driver names supported by the adapter.
const (
	DriverPostgres = "postgres"
)

// Config holds SQL connection configuration
type Config struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver
func DefaultConfig(driver string) Config {
	return Config{
		Driver:          driver,
		DSN:             "",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Schema creates the generic documents table the gateway stores into.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);`

// Store implements store.Gateway on a SQL database via sqlx. Every
// document lives as a JSON blob in a single documents table, keeping
// the adapter portable across schemas.
type Store struct {
	db *sqlx.DB
}

// New connects to the database described by config.
func New(config Config) (*Store, error) {
	if config.DSN == "" {
		return nil, errors.New("sql storage requires a DSN")
	}
	db, err := sqlx.Connect(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	return &Store{db: db}, nil
}

// NewWithDB creates a Store using an existing sqlx handle (useful for testing)
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	var data []byte
	query := s.db.Rebind(`SELECT data FROM documents WHERE collection = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &data, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}
	return store.Decode(data, dest)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := store.Encode(doc)
	if err != nil {
		return err
	}
	query := s.db.Rebind(`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`)
	if _, err := s.db.ExecContext(ctx, query, collection, id, []byte(raw)); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Update merges fields inside a transaction holding a row lock, so
// concurrent read-modify-write updates serialize at the database.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var data []byte
	query := tx.Rebind(`SELECT data FROM documents WHERE collection = ? AND id = ? FOR UPDATE`)
	if err := tx.GetContext(ctx, &data, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to load document for update: %w", err)
	}
	merged, err := store.Merge(data, fields)
	if err != nil {
		return err
	}
	update := tx.Rebind(`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`)
	if _, err := tx.ExecContext(ctx, update, []byte(merged), collection, id); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Query(ctx context.Context, collection, field string, value any, dest any) error {
	raws, err := s.collectionDocs(ctx, collection)
	if err != nil {
		return err
	}
	var matches []json.RawMessage
	for _, raw := range raws {
		if store.FieldMatches(raw, field, value) {
			matches = append(matches, raw)
		}
	}
	return store.DecodeList(matches, dest)
}

func (s *Store) List(ctx context.Context, collection string, dest any) error {
	raws, err := s.collectionDocs(ctx, collection)
	if err != nil {
		return err
	}
	return store.DecodeList(raws, dest)
}

func (s *Store) Add(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := store.Encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	raw, err = store.WithID(raw, id)
	if err != nil {
		return "", err
	}
	query := s.db.Rebind(`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, collection, id, []byte(raw)); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return id, nil
}

func (s *Store) collectionDocs(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var rows [][]byte
	query := s.db.Rebind(`SELECT data FROM documents WHERE collection = ?`)
	if err := s.db.SelectContext(ctx, &rows, query, collection); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	raws := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		raws[i] = json.RawMessage(row)
	}
	return raws, nil
}

var _ store.Gateway = (*Store)(nil)
