package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, otherwise every pooled conn sees its own empty :memory: db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key        TEXT PRIMARY KEY,
  value      BLOB,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "@auth:token", []byte("tok")))

	v, err := r.Get(ctx, "@auth:token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok"), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSetMany_WritesAllEntries(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx,
		Entry{Key: "a", Value: []byte("1")},
		Entry{Key: "b", Value: []byte("2")},
		Entry{Key: "c", Value: []byte("3")},
	))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")}, m)

	require.NoError(t, r.SetMany(ctx))
}

func TestDeleteMany_RemovesOnlyListedKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx,
		Entry{Key: "a", Value: []byte("1")},
		Entry{Key: "b", Value: []byte("2")},
		Entry{Key: "keep", Value: []byte("3")},
	))
	require.NoError(t, r.DeleteMany(ctx, "a", "b", "never-existed"))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"keep": []byte("3")}, m)
}

func TestApply_UpsertsAndRemoves(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx,
		Entry{Key: "@auth:token", Value: []byte("old")},
		Entry{Key: "@auth:refreshToken", Value: []byte("R")},
	))
	require.NoError(t, r.Apply(ctx,
		[]Entry{{Key: "@auth:token", Value: []byte("new")}, {Key: "@auth:role", Value: []byte("client")}},
		[]string{"@auth:refreshToken"},
	))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"@auth:token": []byte("new"), "@auth:role": []byte("client")}, m)

	require.NoError(t, r.Apply(ctx, nil, nil))
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestList_NullValueIsReturnedAsNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO kv(key, value) VALUES ('bad', NULL);`)
	require.NoError(t, err)

	m, err := r.List(context.Background())
	require.NoError(t, err)
	v, ok := m["bad"]
	require.True(t, ok)
	require.Nil(t, v)
}

func TestClosedDB_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get kv[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set kv[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete kv[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear kv")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list kv")
}

func TestSetMany_RollsBackOnDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk full")
	upsert := regexp.QuoteMeta("INSERT INTO kv (key, value, updated_at)")

	mock.ExpectBegin()
	mock.ExpectExec(upsert).WithArgs("@auth:token", []byte("t")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsert).WithArgs("@auth:user", []byte("{}")).WillReturnError(boom)
	mock.ExpectRollback()

	r := NewSQLiteRepository(db)
	err = r.SetMany(context.Background(),
		Entry{Key: "@auth:token", Value: []byte("t")},
		Entry{Key: "@auth:user", Value: []byte("{}")},
		Entry{Key: "@auth:role", Value: []byte("client")},
	)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "failed to set kv[@auth:user]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMany_CommitsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	del := regexp.QuoteMeta("DELETE FROM kv WHERE key = ?")
	mock.ExpectBegin()
	mock.ExpectExec(del).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(del).WithArgs("b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := NewSQLiteRepository(db)
	require.NoError(t, r.DeleteMany(context.Background(), "a", "b"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_DeleteFailureRollsBackUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("locked")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv (key, value, updated_at)")).
		WithArgs("@auth:token", []byte("t")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv WHERE key = ?")).
		WithArgs("@auth:refreshToken").WillReturnError(boom)
	mock.ExpectRollback()

	r := NewSQLiteRepository(db)
	err = r.Apply(context.Background(),
		[]Entry{{Key: "@auth:token", Value: []byte("t")}},
		[]string{"@auth:refreshToken"},
	)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "failed to delete kv[@auth:refreshToken]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_ScanErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("k").WillReturnError(sql.ErrConnDone)

	_, err = NewSQLiteRepository(db).Get(context.Background(), "k")
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}
