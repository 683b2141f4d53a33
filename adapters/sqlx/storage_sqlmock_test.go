package sqlx_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "mathquest/adapters/sqlx"
	"mathquest/core"
	"mathquest/store"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"))
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func mustJSON(t *testing.T, doc any) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestSQLMock_Get(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	profile := core.UserProfile{UserID: "alice", Coins: 75}
	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs(store.CollectionUsers, "alice").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(mustJSON(t, profile)))

	var got core.UserProfile
	require.NoError(t, s.Get(context.Background(), store.CollectionUsers, "alice", &got))
	require.Equal(t, int64(75), got.Coins)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Get_NotFound(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs(store.CollectionUsers, "ghost").
		WillReturnError(sql.ErrNoRows)

	var got core.UserProfile
	err := s.Get(context.Background(), store.CollectionUsers, "ghost", &got)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Set_Upsert(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(store.CollectionUsers, "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), store.CollectionUsers, "alice",
		core.UserProfile{UserID: "alice"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Update(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	profile := core.UserProfile{UserID: "alice", Coins: 10}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data FROM documents .* FOR UPDATE`).
		WithArgs(store.CollectionUsers, "alice").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(mustJSON(t, profile)))
	mock.ExpectExec(`UPDATE documents SET data`).
		WithArgs(sqlmock.AnyArg(), store.CollectionUsers, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Update(context.Background(), store.CollectionUsers, "alice",
		map[string]any{"coins": 30}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Update_NotFound(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data FROM documents .* FOR UPDATE`).
		WithArgs(store.CollectionUsers, "ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Update(context.Background(), store.CollectionUsers, "ghost", map[string]any{"coins": 1})
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_QueryFiltersByField(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"data"}).
		AddRow(mustJSON(t, core.UserBadge{ID: "1", UserID: "alice", BadgeID: "first-steps"})).
		AddRow(mustJSON(t, core.UserBadge{ID: "2", UserID: "bob", BadgeID: "first-steps"}))
	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs(store.CollectionUserBadges).
		WillReturnRows(rows)

	var mine []core.UserBadge
	require.NoError(t, s.Query(context.Background(), store.CollectionUserBadges,
		"user_id", core.UserID("alice"), &mine))
	require.Len(t, mine, 1)
	require.Equal(t, "first-steps", mine[0].BadgeID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Add(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(store.CollectionGames, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.Add(context.Background(), store.CollectionGames,
		core.GameRecord{UserID: "alice", GameType: core.GameAddition})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}
