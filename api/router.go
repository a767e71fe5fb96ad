// Package api exposes the chat over HTTP: authentication, posting, the
// ordered feed, its live WebSocket variant, search and operator statistics.
package api

import (
	"firechat/domain/event"
	"firechat/services"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// StatsProvider reports the moderation counters.
type StatsProvider interface {
	Stats() event.ModerationStats
}

type Handler struct {
	chat         services.IChatService
	auth         services.IAuthService
	stats        StatsProvider
	log          *slog.Logger
	validate     *validator.Validate
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// NewHandler builds the HTTP handler.
// With no allowed origins the live feed only accepts same-host WebSocket handshakes;
// "*" accepts every origin.
func NewHandler(chat services.IChatService, auth services.IAuthService, stats StatsProvider, log *slog.Logger,
	allowedOrigins []string) *Handler {
	return &Handler{
		chat:     chat,
		auth:     auth,
		stats:    stats,
		log:      log,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		writeTimeout: 10 * time.Second,
	}
}

// checkOrigin returns nil for an empty allow list, which keeps the upgrader's same-origin check.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if lo.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.ContainsBy(allowed, func(o string) bool {
			return strings.EqualFold(o, origin)
		})
	}
}

// NewRouter wires HTTP routes to the handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		h.RegisterRoutes(api)
	})
	r.Get("/debug/moderation", h.handleStats)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(a chi.Router) {
		a.Post("/register", h.handleRegister)
		a.Post("/login", h.handleLogin)
		a.Group(func(protected chi.Router) {
			protected.Use(RequireAuth(h.auth))
			protected.Post("/logout", h.handleLogout)
			protected.Get("/me", h.handleMe)
		})
	})

	r.Route("/messages", func(m chi.Router) {
		m.Get("/", h.handleFeed)
		m.Get("/live", h.handleLive)
		m.Get("/search", h.handleSearch)
		m.With(RequireAuth(h.auth)).Post("/", h.handlePostMessage)
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Stats())
}
