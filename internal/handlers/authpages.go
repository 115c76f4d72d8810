package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, "signup", map[string]any{
			"Title": "Sign up",
			"Email": "", "Username": "",
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	pass := r.FormValue("password")

	if email == "" || username == "" || pass == "" {
		h.render(w, http.StatusOK, "signup", map[string]any{
			"Title": "Sign up",
			"Error": "All fields are required",
			"Email": email, "Username": username,
		})
		return
	}

	hash, err := HashPassword(pass)
	if err != nil {
		h.serverError(w, err)
		return
	}

	_, err = h.db.Exec(`INSERT INTO users(email,username,password_hash,created_at) VALUES(?,?,?,?)`,
		email, username, hash, time.Now())
	if err != nil {
		h.render(w, http.StatusOK, "signup", map[string]any{
			"Title": "Sign up",
			"Error": "Email or username already taken",
			"Email": email, "Username": username,
		})
		return
	}
	http.Redirect(w, r, "/auth/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}

	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, "login", map[string]any{
			"Title":      "Log in",
			"Registered": r.URL.Query().Get("registered") == "1",
			"Next":       next,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")

	var id int64
	var hash string
	err := h.db.QueryRow(`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !CheckPassword(pass, hash)) {
		h.render(w, http.StatusOK, "login", map[string]any{
			"Title": "Log in",
			"Error": "Wrong email or password",
			"Next":  next,
		})
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	_, _ = h.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, id)

	if err := h.sessions.Create(w, id); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- password helpers (bcrypt) ---
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
