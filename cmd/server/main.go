package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"blog/internal/auth"
	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/handlers"
)

func main() {
	cfg := config.Load()

	if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	dbc, err := db.Open(cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()

	if err := db.Migrate(dbc); err != nil {
		log.Fatal(err)
	}

	sessions := auth.NewManager(dbc, cfg.SessionAge)

	var pages cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			// a dead redis should not keep the site down
			log.Printf("redis unavailable, falling back to in-memory page cache: %v", err)
			pages = cache.NewMemory()
		} else {
			defer rc.Close()
			pages = rc
		}
	} else {
		pages = cache.NewMemory()
	}

	h := handlers.New(dbc, sessions, pages, cfg)

	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
