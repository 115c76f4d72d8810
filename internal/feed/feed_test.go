package feed

import (
	"database/sql"
	"fmt"
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

func createGroup(t *testing.T, dbc *sql.DB, title, slug string) int64 {
	t.Helper()
	res, err := dbc.Exec(`INSERT INTO groups(title,slug,description) VALUES(?,?,?)`, title, slug, "")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func createPost(t *testing.T, dbc *sql.DB, userID, groupID int64, text string, at time.Time) int64 {
	t.Helper()
	var gid any
	if groupID != 0 {
		gid = groupID
	}
	res, err := dbc.Exec(`INSERT INTO posts(user_id,group_id,text,created_at) VALUES(?,?,?,?)`,
		userID, gid, text, at)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestPaginateCompleteness(t *testing.T) {
	dbc := newTestDB(t)
	uid := createUser(t, dbc, "author")

	// identical timestamps: only the id tie-break keeps pages disjoint
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	var want []int64
	for i := 0; i < 25; i++ {
		want = append(want, createPost(t, dbc, uid, 0, fmt.Sprintf("post %d", i), at))
	}
	// newest first means highest id first
	for i, j := 0, len(want)-1; i < j; i, j = i+1, j-1 {
		want[i], want[j] = want[j], want[i]
	}

	c := NewComposer(dbc)
	var got []int64
	for page := 1; page <= 3; page++ {
		pg, err := Paginate(c.Global(), page, 10)
		require.NoError(t, err)
		for _, p := range pg.Posts {
			got = append(got, p.ID)
		}
	}
	require.Equal(t, want, got)
}

func TestPaginateDeterminism(t *testing.T) {
	dbc := newTestDB(t)
	uid := createUser(t, dbc, "author")
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createPost(t, dbc, uid, 0, fmt.Sprintf("post %d", i), at)
	}

	c := NewComposer(dbc)
	first, err := Paginate(c.Global(), 2, 5)
	require.NoError(t, err)
	second, err := Paginate(c.Global(), 2, 5)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPaginateClamping(t *testing.T) {
	dbc := newTestDB(t)
	uid := createUser(t, dbc, "author")
	at := time.Now()
	for i := 0; i < 7; i++ {
		createPost(t, dbc, uid, 0, fmt.Sprintf("post %d", i), at.Add(time.Duration(i)*time.Minute))
	}

	c := NewComposer(dbc)

	pg, err := Paginate(c.Global(), 0, 3)
	require.NoError(t, err)
	require.Equal(t, 1, pg.Number)
	require.False(t, pg.HasPrev)
	require.True(t, pg.HasNext)

	pg, err = Paginate(c.Global(), 99, 3)
	require.NoError(t, err)
	require.Equal(t, 3, pg.Number)
	require.Equal(t, 3, pg.Total)
	require.Len(t, pg.Posts, 1)
	require.True(t, pg.HasPrev)
	require.False(t, pg.HasNext)
}

func TestPaginateEmptyFeed(t *testing.T) {
	dbc := newTestDB(t)
	c := NewComposer(dbc)

	pg, err := Paginate(c.Global(), 5, 10)
	require.NoError(t, err)
	require.Equal(t, 1, pg.Number)
	require.Equal(t, 1, pg.Total)
	require.Empty(t, pg.Posts)
	require.False(t, pg.HasPrev)
	require.False(t, pg.HasNext)
}

func TestPageNumber(t *testing.T) {
	require.Equal(t, 1, PageNumber(""))
	require.Equal(t, 1, PageNumber("abc"))
	require.Equal(t, 1, PageNumber("-3"))
	require.Equal(t, 7, PageNumber("7"))
}

func TestGroupFeedIsolation(t *testing.T) {
	dbc := newTestDB(t)
	uid := createUser(t, dbc, "author")
	g1 := createGroup(t, dbc, "Cats", "cats")
	g2 := createGroup(t, dbc, "Dogs", "dogs")

	at := time.Now()
	createPost(t, dbc, uid, g1, "a cat post", at)
	createPost(t, dbc, uid, g2, "a dog post", at.Add(time.Minute))
	createPost(t, dbc, uid, 0, "no group", at.Add(2*time.Minute))

	c := NewComposer(dbc)
	group, q, err := c.Group("cats")
	require.NoError(t, err)
	require.Equal(t, "Cats", group.Title)

	pg, err := Paginate(q, 1, 10)
	require.NoError(t, err)
	require.Len(t, pg.Posts, 1)
	require.Equal(t, "a cat post", pg.Posts[0].Text)
	require.Equal(t, "cats", pg.Posts[0].GroupSlug)
}

func TestGroupUnknownSlug(t *testing.T) {
	dbc := newTestDB(t)
	_, _, err := NewComposer(dbc).Group("missing")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAuthorFeed(t *testing.T) {
	dbc := newTestDB(t)
	alice := createUser(t, dbc, "alice")
	bob := createUser(t, dbc, "bob")

	at := time.Now()
	createPost(t, dbc, alice, 0, "from alice", at)
	createPost(t, dbc, bob, 0, "from bob", at.Add(time.Minute))

	c := NewComposer(dbc)
	author, q, err := c.Author("alice")
	require.NoError(t, err)
	require.Equal(t, alice, author.ID)

	pg, err := Paginate(q, 1, 10)
	require.NoError(t, err)
	require.Len(t, pg.Posts, 1)
	require.Equal(t, "from alice", pg.Posts[0].Text)

	_, _, err = c.Author("nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFollowedFeed(t *testing.T) {
	dbc := newTestDB(t)
	viewer := createUser(t, dbc, "viewer")
	followed := createUser(t, dbc, "followed")
	other := createUser(t, dbc, "other")

	at := time.Now()
	createPost(t, dbc, followed, 0, "from followed", at)
	createPost(t, dbc, other, 0, "from other", at.Add(time.Minute))

	c := NewComposer(dbc)

	pg, err := Paginate(c.Followed(viewer), 1, 10)
	require.NoError(t, err)
	require.Empty(t, pg.Posts)

	_, err = dbc.Exec(`INSERT INTO follows(user_id,author_id) VALUES(?,?)`, viewer, followed)
	require.NoError(t, err)

	pg, err = Paginate(c.Followed(viewer), 1, 10)
	require.NoError(t, err)
	require.Len(t, pg.Posts, 1)
	require.Equal(t, "from followed", pg.Posts[0].Text)
}
