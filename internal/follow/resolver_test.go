package follow

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blog/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbc, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(dbc))
	return dbc
}

func createUser(t *testing.T, dbc *sql.DB, username string) int64 {
	t.Helper()
	res, err := dbc.Exec(`INSERT INTO users(email,username,password_hash,created_at) VALUES(?,?,?,?)`,
		username+"@example.com", username, "x", time.Now())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func countEdges(t *testing.T, dbc *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, dbc.QueryRow(`SELECT COUNT(*) FROM follows`).Scan(&n))
	return n
}

func TestFollowIdempotent(t *testing.T) {
	dbc := newTestDB(t)
	r := New(dbc)
	a := createUser(t, dbc, "a")
	b := createUser(t, dbc, "b")

	require.NoError(t, r.Follow(a, b))
	require.NoError(t, r.Follow(a, b))
	require.Equal(t, 1, countEdges(t, dbc))

	following, err := r.IsFollowing(a, b)
	require.NoError(t, err)
	require.True(t, following)

	// the edge is directed
	following, err = r.IsFollowing(b, a)
	require.NoError(t, err)
	require.False(t, following)
}

func TestSelfFollowRejected(t *testing.T) {
	dbc := newTestDB(t)
	r := New(dbc)
	a := createUser(t, dbc, "a")

	require.ErrorIs(t, r.Follow(a, a), ErrSelfFollow)
	require.Equal(t, 0, countEdges(t, dbc))
}

func TestUnfollow(t *testing.T) {
	dbc := newTestDB(t)
	r := New(dbc)
	a := createUser(t, dbc, "a")
	b := createUser(t, dbc, "b")

	require.NoError(t, r.Follow(a, b))
	require.NoError(t, r.Unfollow(a, b))
	require.Equal(t, 0, countEdges(t, dbc))

	following, err := r.IsFollowing(a, b)
	require.NoError(t, err)
	require.False(t, following)

	// unfollowing twice is already-satisfied, not an error
	require.NoError(t, r.Unfollow(a, b))
}

func TestUnauthenticatedViewerFollowsNobody(t *testing.T) {
	dbc := newTestDB(t)
	r := New(dbc)
	b := createUser(t, dbc, "b")

	following, err := r.IsFollowing(0, b)
	require.NoError(t, err)
	require.False(t, following)
}
