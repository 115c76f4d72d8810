package handlers

import "net/http"

// Routes wires every page onto a mux. Only the global feed goes through
// the page cache.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.CachedPage(h.Index))
	mux.HandleFunc("/group/", h.GroupFeed)
	mux.HandleFunc("/profile/", h.ProfileRouter)
	mux.HandleFunc("/follow", h.FollowIndex)

	mux.HandleFunc("/posts/create", h.CreatePost)
	mux.HandleFunc("/posts/", h.PostRouter)

	mux.HandleFunc("/auth/signup", h.Signup)
	mux.HandleFunc("/auth/login", h.Login)
	mux.HandleFunc("/auth/logout", h.Logout)

	return WithRecover(mux)
}
