package api

import (
	"context"
	"encoding/json"
	"firechat/auth"
	"firechat/domain"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

type postMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type feedQuery struct {
	Limit int `validate:"gte=0"`
}

type searchQuery struct {
	Q     string `validate:"required,max=256"`
	Limit int    `validate:"gte=0"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var payload postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	author, _ := auth.PrincipalFrom(r.Context())
	message, err := h.chat.PostMessage(r.Context(), author, payload.Text)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseFeedQuery(w, r)
	if !ok {
		return
	}
	snapshot, err := h.chat.Feed(r.Context(), domain.FeedQuery{Limit: query.Limit})
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "limit must be a number")
		return
	}
	query := searchQuery{Q: r.URL.Query().Get("q"), Limit: limit}
	if err = h.validate.Struct(query); err != nil {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	messages, err := h.chat.Search(r.Context(), query.Q, query.Limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMessagesResponse(messages))
}

// handleLive streams the feed over a WebSocket: the current snapshot first,
// then a new one after every change. Frames the client sends are ignored.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseFeedQuery(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, err := h.chat.Subscribe(ctx, domain.FeedQuery{Limit: query.Limit})
	if err != nil {
		h.log.Error("Cannot subscribe to the feed", "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "feed unavailable"))
		return
	}

	// The read loop only detects the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err = conn.WriteJSON(toSnapshotResponse(snapshot)); err != nil {
				h.log.Debug("Live feed client dropped", "error", err)
				return
			}
		}
	}
}

func (h *Handler) parseFeedQuery(w http.ResponseWriter, r *http.Request) (feedQuery, bool) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "limit must be a number")
		return feedQuery{}, false
	}
	query := feedQuery{Limit: limit}
	if err = h.validate.Struct(query); err != nil {
		respondError(w, http.StatusBadRequest, "limit must not be negative")
		return feedQuery{}, false
	}
	return query, true
}

// parseLimit returns 0 when absent, letting the service apply its default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
