package models

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

type Post struct {
	ID        int64
	UserID    int64
	GroupID   int64 // 0 when the post belongs to no group
	Text      string
	Image     string
	CreatedAt time.Time

	// joined display fields
	Author     string
	GroupTitle string
	GroupSlug  string
}

type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Text      string
	CreatedAt time.Time
	Author    string
}

type Follow struct {
	UserID   int64
	AuthorID int64
}
