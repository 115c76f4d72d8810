package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog/internal/models"
)

func (h *Handler) getPost(id int64) (*models.Post, error) {
	var p models.Post
	err := h.db.QueryRow(`SELECT p.id, p.user_id, IFNULL(p.group_id,0), p.text, IFNULL(p.image,''), p.created_at,
		u.username, IFNULL(g.title,''), IFNULL(g.slug,'')
		FROM posts p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN groups g ON g.id = p.group_id
		WHERE p.id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.GroupID, &p.Text, &p.Image, &p.CreatedAt,
			&p.Author, &p.GroupTitle, &p.GroupSlug)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (h *Handler) groupOptions() []models.Group {
	var groups []models.Group
	rows, err := h.db.Query(`SELECT id, title, slug FROM groups ORDER BY title`)
	if err != nil {
		return groups
	}
	defer rows.Close()
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug); err == nil {
			groups = append(groups, g)
		}
	}
	return groups
}

// PostRouter dispatches /posts/{id}[/edit|/comment|/delete].
func (h *Handler) PostRouter(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/posts/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		h.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		h.postDetail(w, r, id)
	case len(parts) == 2 && parts[1] == "edit":
		h.editPost(w, r, id)
	case len(parts) == 2 && parts[1] == "comment":
		h.addComment(w, r, id)
	case len(parts) == 2 && parts[1] == "delete":
		h.deletePost(w, r, id)
	default:
		h.NotFound(w, r)
	}
}

func (h *Handler) postDetail(w http.ResponseWriter, r *http.Request, id int64) {
	post, err := h.getPost(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	var comments []models.Comment
	rows, err := h.db.Query(`SELECT c.id, c.post_id, c.user_id, c.text, c.created_at, u.username
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ? ORDER BY c.created_at, c.id`, id)
	if err != nil {
		h.serverError(w, err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt, &c.Author); err != nil {
			h.serverError(w, err)
			return
		}
		comments = append(comments, c)
	}

	user, _ := h.sessions.CurrentUser(r)
	h.render(w, http.StatusOK, "post", map[string]any{
		"Title":    "Post by " + post.Author,
		"User":     user,
		"Post":     post,
		"Comments": comments,
	})
}

// CreatePost serves the form on GET and creates the post on POST. A blank
// text re-renders the form with a field error instead of failing the
// request. The global feed cache is not touched: the new post shows up
// there once the TTL runs out.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, "create", map[string]any{
			"Title":   "New post",
			"User":    user,
			"Groups":  h.groupOptions(),
			"GroupID": int64(0),
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	image := strings.TrimSpace(r.FormValue("image"))
	groupID := h.validGroupID(r.FormValue("group"))

	if text == "" {
		h.render(w, http.StatusOK, "create", map[string]any{
			"Title":   "New post",
			"User":    user,
			"Groups":  h.groupOptions(),
			"GroupID": groupID,
			"Errors":  map[string]string{"Text": "Text is required"},
		})
		return
	}

	_, err := h.db.Exec(`INSERT INTO posts(user_id, group_id, text, image, created_at) VALUES(?,?,?,?,?)`,
		user.ID, nullableID(groupID), text, nullableText(image), time.Now())
	if err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request, id int64) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	post, err := h.getPost(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	detail := "/posts/" + strconv.FormatInt(id, 10)

	// only the author edits; anyone else lands on the read-only detail page
	if post.UserID != user.ID {
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, "create", map[string]any{
			"Title":   "Edit post",
			"User":    user,
			"Groups":  h.groupOptions(),
			"GroupID": post.GroupID,
			"Post":    post,
			"IsEdit":  true,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	image := strings.TrimSpace(r.FormValue("image"))
	groupID := h.validGroupID(r.FormValue("group"))

	if text == "" {
		h.render(w, http.StatusOK, "create", map[string]any{
			"Title":   "Edit post",
			"User":    user,
			"Groups":  h.groupOptions(),
			"GroupID": groupID,
			"Post":    post,
			"IsEdit":  true,
			"Errors":  map[string]string{"Text": "Text is required"},
		})
		return
	}

	_, err = h.db.Exec(`UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?`,
		text, nullableID(groupID), nullableText(image), id)
	if err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, detail, http.StatusSeeOther)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request, id int64) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	post, err := h.getPost(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	detail := "/posts/" + strconv.FormatInt(post.ID, 10)

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}

	_, err = h.db.Exec(`INSERT INTO comments(post_id, user_id, text, created_at) VALUES(?,?,?,?)`,
		post.ID, user.ID, text, time.Now())
	if err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, detail, http.StatusSeeOther)
}

// deletePost removes a post without clearing the page cache, so a cached
// global feed may keep serving the post until its TTL expires.
func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request, id int64) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	post, err := h.getPost(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	if post.UserID != user.ID {
		http.Redirect(w, r, "/posts/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
		return
	}

	if _, err := h.db.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}

// validGroupID parses a group form value and checks the group exists;
// anything else means "no group".
func (h *Handler) validGroupID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	var found int64
	if err := h.db.QueryRow(`SELECT id FROM groups WHERE id = ?`, id).Scan(&found); err != nil {
		return 0
	}
	return found
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
