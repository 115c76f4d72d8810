package handlers

import (
	"database/sql"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"blog/internal/auth"
	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/feed"
	"blog/internal/follow"
	"blog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	db       *sql.DB
	sessions *auth.Manager
	composer *feed.Composer
	follows  *follow.Resolver
	cache    cache.Cache
	cfg      *config.Config
	tpls     *template.Template
}

func New(db *sql.DB, sessions *auth.Manager, pc cache.Cache, cfg *config.Config) *Handler {
	tpls := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	return &Handler{
		db:       db,
		sessions: sessions,
		composer: feed.NewComposer(db),
		follows:  follow.New(db),
		cache:    pc,
		cfg:      cfg,
		tpls:     tpls,
	}
}

// -------- helpers

func (h *Handler) render(w http.ResponseWriter, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	w.WriteHeader(status)
	if err := h.tpls.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	log.Printf("%s\n%s", err.Error(), debug.Stack())
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	user, _ := h.sessions.CurrentUser(r)
	h.render(w, http.StatusNotFound, "notfound", map[string]any{
		"Title": "Not Found",
		"User":  user,
	})
}

// requireUser resolves the viewer or redirects to login, preserving the
// requested path so login can bounce back.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := h.sessions.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

// -------- feed pages

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}

	page, err := feed.Paginate(h.composer.Global(),
		feed.PageNumber(r.URL.Query().Get("page")), h.cfg.PageSize)
	if err != nil {
		h.serverError(w, err)
		return
	}

	user, _ := h.sessions.CurrentUser(r)
	h.render(w, http.StatusOK, "index", map[string]any{
		"Title": "Latest posts",
		"User":  user,
		"Page":  page,
	})
}

func (h *Handler) GroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/group/"), "/")
	if slug == "" {
		h.NotFound(w, r)
		return
	}

	group, q, err := h.composer.Group(slug)
	if errors.Is(err, feed.ErrGroupNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	page, err := feed.Paginate(q, feed.PageNumber(r.URL.Query().Get("page")), h.cfg.PageSize)
	if err != nil {
		h.serverError(w, err)
		return
	}

	user, _ := h.sessions.CurrentUser(r)
	h.render(w, http.StatusOK, "group", map[string]any{
		"Title": group.Title,
		"User":  user,
		"Group": group,
		"Page":  page,
	})
}

// ProfileRouter dispatches /profile/{username}[/follow|/unfollow].
func (h *Handler) ProfileRouter(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/profile/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		h.NotFound(w, r)
		return
	}
	username := parts[0]

	switch {
	case len(parts) == 1:
		h.profile(w, r, username)
	case len(parts) == 2 && parts[1] == "follow":
		h.profileFollow(w, r, username)
	case len(parts) == 2 && parts[1] == "unfollow":
		h.profileUnfollow(w, r, username)
	default:
		h.NotFound(w, r)
	}
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, username string) {
	author, q, err := h.composer.Author(username)
	if errors.Is(err, feed.ErrUserNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	page, err := feed.Paginate(q, feed.PageNumber(r.URL.Query().Get("page")), h.cfg.PageSize)
	if err != nil {
		h.serverError(w, err)
		return
	}

	user, _ := h.sessions.CurrentUser(r)
	var viewerID int64
	if user != nil {
		viewerID = user.ID
	}
	following, err := h.follows.IsFollowing(viewerID, author.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, http.StatusOK, "profile", map[string]any{
		"Title":     author.Username,
		"User":      user,
		"Author":    author,
		"Following": following,
		"Page":      page,
	})
}

func (h *Handler) profileFollow(w http.ResponseWriter, r *http.Request, username string) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	author, _, err := h.composer.Author(username)
	if errors.Is(err, feed.ErrUserNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	// a self-follow is silently ignored, like a duplicate follow
	if err := h.follows.Follow(user.ID, author.ID); err != nil && !errors.Is(err, follow.ErrSelfFollow) {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/profile/"+username, http.StatusSeeOther)
}

func (h *Handler) profileUnfollow(w http.ResponseWriter, r *http.Request, username string) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	author, _, err := h.composer.Author(username)
	if errors.Is(err, feed.ErrUserNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, err)
		return
	}

	if err := h.follows.Unfollow(user.ID, author.ID); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/profile/"+username, http.StatusSeeOther)
}

func (h *Handler) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	page, err := feed.Paginate(h.composer.Followed(user.ID),
		feed.PageNumber(r.URL.Query().Get("page")), h.cfg.PageSize)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, http.StatusOK, "follow", map[string]any{
		"Title": "Followed authors",
		"User":  user,
		"Page":  page,
	})
}
