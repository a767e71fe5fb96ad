package api

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"firechat/domain"
	"firechat/errors"
	"net/http"
	"time"

	"github.com/samber/lo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type authorResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

type messageResponse struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Author    authorResponse `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

type snapshotResponse struct {
	Messages []messageResponse `json:"messages"`
	At       time.Time         `json:"at"`
}

type principalResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:   m.ID.String(),
		Text: m.Text,
		Author: authorResponse{
			ID:          m.Author.ID,
			DisplayName: m.Author.DisplayName,
			PhotoURL:    m.Author.PhotoURL,
		},
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

func toSnapshotResponse(s domain.Snapshot) snapshotResponse {
	return snapshotResponse{Messages: toMessagesResponse(s.Messages), At: s.At}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondErr maps a service error to its HTTP status.
// Unknown errors are reported without detail.
func respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrInvalidRequest),
		goerrors.Is(err, errors.ErrInvalidPassword),
		goerrors.Is(err, errors.ErrEmptyText),
		goerrors.Is(err, errors.ErrTextTooLong),
		goerrors.Is(err, errors.ErrMalformedText):
		return http.StatusBadRequest
	case goerrors.Is(err, errors.ErrInvalidCredentials),
		goerrors.Is(err, errors.ErrUnauthenticated),
		goerrors.Is(err, errors.ErrTokenRevoked):
		return http.StatusUnauthorized
	case goerrors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case goerrors.Is(err, errors.ErrMessageNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, context.Canceled),
		goerrors.Is(err, context.DeadlineExceeded),
		goerrors.Is(err, errors.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
