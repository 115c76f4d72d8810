package handlers

import (
	"bytes"
	"log"
	"net/http"
)

// WithRecover wraps an http.Handler and recovers from panics,
// returning HTTP 500 instead of crashing the server.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[recover] %v (%s %s)", rec, r.Method, r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CachedPage serves whole rendered pages out of the page cache, keyed by
// the exact path+query so every page number is its own entry. Only GET
// responses with status 200 are recorded; a TTL of zero disables caching
// entirely. Nothing here invalidates on writes: entries age out.
func (h *Handler) CachedPage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.CacheTTL <= 0 || r.Method != http.MethodGet {
			next(w, r)
			return
		}

		key := r.URL.RequestURI()
		if body, ok := h.cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
			return
		}

		rec := &pageRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if rec.status == http.StatusOK {
			h.cache.Put(r.Context(), key, rec.buf.Bytes(), h.cfg.CacheTTL)
		}
	}
}

// pageRecorder tees the response body so a 200 can be cached after the
// handler has already written it to the client.
type pageRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (p *pageRecorder) WriteHeader(code int) {
	p.status = code
	p.ResponseWriter.WriteHeader(code)
}

func (p *pageRecorder) Write(b []byte) (int, error) {
	p.buf.Write(b)
	return p.ResponseWriter.Write(b)
}
