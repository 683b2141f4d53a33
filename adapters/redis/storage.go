package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mathquest/store"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements the store.Gateway interface using Redis as the backend.
// Data structure:
// - doc:{collection}:{id} -> JSON document
// - col:{collection}      -> set of document ids in the collection
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed gateway with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func docKey(collection, id string) string {
	return fmt.Sprintf("doc:%s:%s", collection, id)
}

func colKey(collection string) string {
	return fmt.Sprintf("col:%s", collection)
}

func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	raw, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}
	return store.Decode(raw, dest)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := store.Encode(doc)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(collection, id), []byte(raw), 0)
	pipe.SAdd(ctx, colKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Update merges fields under an optimistic WATCH so concurrent writers
// to the same document retry instead of clobbering each other.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	key := docKey(collection, id)
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return store.ErrNotFound
			}
			return err
		}
		merged, err := store.Merge(raw, fields)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, []byte(merged), 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 5; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil && err != store.ErrNotFound {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return err
	}
	return fmt.Errorf("failed to update document %s after retries", key)
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
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(collection, id), []byte(raw), 0)
	pipe.SAdd(ctx, colKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return id, nil
}

// collectionDocs fetches every document in the collection via its id set.
func (s *Store) collectionDocs(ctx context.Context, collection string) ([]json.RawMessage, error) {
	ids, err := s.client.SMembers(ctx, colKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	raws := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // id in set but document missing; skip
		}
		raws = append(raws, json.RawMessage(str))
	}
	return raws, nil
}

var _ store.Gateway = (*Store)(nil)
