package feed

import (
	"database/sql"
	"errors"

	"blog/internal/models"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Composer builds the ordered post listing for each feed context. A Query
// holds only SQL fragments, so the feed is never materialized beyond the
// page the caller asks for, and re-running a page yields the same rows.
type Composer struct {
	db *sql.DB
}

func NewComposer(db *sql.DB) *Composer {
	return &Composer{db: db}
}

// Query is one feed context, ready to be counted and sliced.
type Query struct {
	db    *sql.DB
	where string
	args  []any
}

const selectPosts = `SELECT p.id, p.user_id, IFNULL(p.group_id,0), p.text, IFNULL(p.image,''), p.created_at,
	u.username, IFNULL(g.title,''), IFNULL(g.slug,'')
	FROM posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN groups g ON g.id = p.group_id`

// Global is the unfiltered feed, newest first.
func (c *Composer) Global() *Query {
	return &Query{db: c.db}
}

// Group resolves slug and returns the group's feed. ErrGroupNotFound when
// no group carries the slug.
func (c *Composer) Group(slug string) (*models.Group, *Query, error) {
	var g models.Group
	err := c.db.QueryRow(`SELECT id, title, slug, description FROM groups WHERE slug = ?`, slug).
		Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrGroupNotFound
	} else if err != nil {
		return nil, nil, err
	}
	return &g, &Query{db: c.db, where: "p.group_id = ?", args: []any{g.ID}}, nil
}

// Author resolves username and returns that author's feed. ErrUserNotFound
// when no user carries the username.
func (c *Composer) Author(username string) (*models.User, *Query, error) {
	var u models.User
	err := c.db.QueryRow(`SELECT id, email, username, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrUserNotFound
	} else if err != nil {
		return nil, nil, err
	}
	return &u, &Query{db: c.db, where: "p.user_id = ?", args: []any{u.ID}}, nil
}

// Followed is the feed of authors the viewer follows. Empty when the
// viewer follows nobody.
func (c *Composer) Followed(viewerID int64) *Query {
	return &Query{
		db:    c.db,
		where: "p.user_id IN (SELECT author_id FROM follows WHERE user_id = ?)",
		args:  []any{viewerID},
	}
}

func (q *Query) Count() (int, error) {
	stmt := `SELECT COUNT(*) FROM posts p`
	if q.where != "" {
		stmt += " WHERE " + q.where
	}
	var n int
	if err := q.db.QueryRow(stmt, q.args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Slice fetches one window of the feed. Ordering is by creation time,
// newest first, with id breaking timestamp ties so adjacent pages never
// overlap or skip.
func (q *Query) Slice(limit, offset int) ([]models.Post, error) {
	stmt := selectPosts
	if q.where != "" {
		stmt += " WHERE " + q.where
	}
	stmt += " ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?"
	args := append(append([]any{}, q.args...), limit, offset)

	rows, err := q.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.GroupID, &p.Text, &p.Image, &p.CreatedAt,
			&p.Author, &p.GroupTitle, &p.GroupSlug); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
