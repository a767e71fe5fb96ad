// Package domain contains core concepts of the chat system.
// This file defines the Message record and the feed snapshot built from it.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat entry.
// Only Text may change after creation, and only through moderation.
type Message struct {
	ID        uuid.UUID // assigned by the store
	Text      string
	Author    Principal // snapshot of the author at send time
	CreatedAt time.Time // assigned by the store, sole ordering key
}

// Snapshot is the ordered result of a live feed query, oldest first.
type Snapshot struct {
	Messages []Message
	At       time.Time
}
