package internal

import (
	"encoding/json"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
)

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string                `json:"prefix"`
	Items  []repositories.Record `json:"items"`
	Stats  map[string]any        `json:"stats"`
}

// NewDebugHandler serves a read-only view of the raw store.
// GET /inspect?prefix=msg: lists the decoded records under a key prefix.
func NewDebugHandler(db *badger.DB, statsProvider StatsProvider) http.Handler {
	r := chi.NewRouter()
	r.Get("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		items, err := repositories.Scan(db, prefix)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Items = items

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(data)
	})
	return r
}

// StartDebugServer exposes the debug handler on localhost only.
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider, log *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: NewDebugHandler(db, statsProvider),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
	log.Info("Debug store inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", port))
	return server
}
