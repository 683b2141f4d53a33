// Package store defines the persistence gateway the reward engine runs
// against. The engine depends only on this interface; the adapters
// under adapters/ provide document stores backed by memory, a JSON
// file, Redis, or SQL.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists for the id.
var ErrNotFound = errors.New("document not found")

// Collection names used by the engine.
const (
	CollectionBadges        = "badges"
	CollectionTrophies      = "trophies"
	CollectionAvatarItems   = "avatar_items"
	CollectionUsers         = "users"
	CollectionUserBadges    = "user_badges"
	CollectionUserTrophies  = "user_trophies"
	CollectionUserItems     = "user_items"
	CollectionGames         = "games"
	CollectionTransactions  = "transactions"
	CollectionNotifications = "notifications"
)

// Gateway abstracts a document store. Documents are encoded and matched
// as JSON: Update field keys and Query field names refer to the JSON
// property names of the stored record.
//
// Add assigns a fresh document id, mirrors it into the record's "id"
// property, and returns it. Set is an upsert under a caller-chosen id.
type Gateway interface {
	// Get loads the document into dest (a pointer to a record type).
	// Returns ErrNotFound when the id is absent.
	Get(ctx context.Context, collection, id string, dest any) error

	// Set upserts the full document under the given id.
	Set(ctx context.Context, collection, id string, doc any) error

	// Update merges the given JSON properties into an existing document.
	// Returns ErrNotFound when the id is absent.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Query loads every document whose JSON property equals value into
	// dest (a pointer to a slice of a record type).
	Query(ctx context.Context, collection, field string, value any, dest any) error

	// List loads every document in the collection into dest (a pointer
	// to a slice of a record type). Catalog scans use this.
	List(ctx context.Context, collection string, dest any) error

	// Add stores the document under a generated id and returns the id.
	Add(ctx context.Context, collection string, doc any) (string, error)
}
