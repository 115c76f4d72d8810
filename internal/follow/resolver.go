package follow

import (
	"database/sql"
	"errors"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// Resolver owns the follow edges between users. An edge either exists or
// it does not; the store's primary key on (user_id, author_id) is the
// source of truth, so concurrent duplicate follows collapse to one edge.
type Resolver struct {
	db *sql.DB
}

func New(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// IsFollowing reports whether viewer follows author. A zero viewer is an
// unauthenticated request and never follows anyone.
func (r *Resolver) IsFollowing(viewer, author int64) (bool, error) {
	if viewer == 0 {
		return false, nil
	}
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?`,
		viewer, author).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Follow creates the edge if absent. Repeat calls succeed without adding
// a second edge; following yourself is ErrSelfFollow.
func (r *Resolver) Follow(viewer, author int64) error {
	if viewer == author {
		return ErrSelfFollow
	}
	_, err := r.db.Exec(`INSERT OR IGNORE INTO follows(user_id, author_id) VALUES(?,?)`,
		viewer, author)
	return err
}

// Unfollow removes the edge if present. Unfollowing someone you do not
// follow is treated as already satisfied, not an error.
func (r *Resolver) Unfollow(viewer, author int64) error {
	_, err := r.db.Exec(`DELETE FROM follows WHERE user_id = ? AND author_id = ?`,
		viewer, author)
	return err
}
