package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathquest/core"
	"mathquest/store"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_SetGet(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	s := NewWithClient(client)
	ctx := context.Background()

	profile := core.UserProfile{UserID: "alice", Coins: 120, BadgeCount: 2}
	require.NoError(t, s.Set(ctx, store.CollectionUsers, "alice", profile))

	var got core.UserProfile
	require.NoError(t, s.Get(ctx, store.CollectionUsers, "alice", &got))
	assert.Equal(t, int64(120), got.Coins)
	assert.Equal(t, 2, got.BadgeCount)
}

func TestStore_GetNotFound(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	s := NewWithClient(client)
	var got core.UserProfile
	err := s.Get(context.Background(), store.CollectionUsers, "ghost", &got)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	s := NewWithClient(client)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.CollectionUsers, "alice", core.UserProfile{UserID: "alice", Coins: 10}))
	require.NoError(t, s.Update(ctx, store.CollectionUsers, "alice", map[string]any{"coins": 35}))

	var got core.UserProfile
	require.NoError(t, s.Get(ctx, store.CollectionUsers, "alice", &got))
	assert.Equal(t, int64(35), got.Coins)
	assert.Equal(t, core.UserID("alice"), got.UserID)

	err := s.Update(ctx, store.CollectionUsers, "ghost", map[string]any{"coins": 1})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_QueryAndList(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	s := NewWithClient(client)
	ctx := context.Background()

	for _, ub := range []core.UserBadge{
		{UserID: "alice", BadgeID: "first-steps"},
		{UserID: "alice", BadgeID: "speed-demon"},
		{UserID: "bob", BadgeID: "first-steps"},
	} {
		_, err := s.Add(ctx, store.CollectionUserBadges, ub)
		require.NoError(t, err)
	}

	var mine []core.UserBadge
	require.NoError(t, s.Query(ctx, store.CollectionUserBadges, "user_id", core.UserID("alice"), &mine))
	assert.Len(t, mine, 2)
	for _, ub := range mine {
		assert.NotEmpty(t, ub.ID)
	}

	var all []core.UserBadge
	require.NoError(t, s.List(ctx, store.CollectionUserBadges, &all))
	assert.Len(t, all, 3)
}

func TestStore_AddReturnsID(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	s := NewWithClient(client)
	ctx := context.Background()

	id, err := s.Add(ctx, store.CollectionGames, core.GameRecord{UserID: "alice", GameType: core.GameAddition})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var rec core.GameRecord
	require.NoError(t, s.Get(ctx, store.CollectionGames, id, &rec))
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, core.GameAddition, rec.GameType)
}
