package event

import (
	"firechat/domain"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MessageCreatedType   Type = "MESSAGE_CREATED"
	MessageModeratedType Type = "MESSAGE_MODERATED"
	TriggerFailedType    Type = "TRIGGER_FAILED"
	DeadLetteredType     Type = "DEAD_LETTERED"
)

// Event is the envelope travelling on the telemetry channel.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

// MessageCreated is delivered to every registered trigger once per new record.
// Message is a read view of the record at creation time.
type MessageCreated struct {
	Message domain.Message
	Attempt int
}

type FeedChange string

const (
	Created  FeedChange = "CREATED"
	Modified FeedChange = "MODIFIED"
)

// FeedChanged tells the live feed that a record was created or modified.
type FeedChanged struct {
	ID     uuid.UUID
	Change FeedChange
	At     time.Time
}

type MessageModerated struct {
	ID    uuid.UUID
	Words []string
	Lang  string
}

type TriggerFailed struct {
	ID      uuid.UUID
	Trigger string
	Attempt int
	Err     error
}

type DeadLettered struct {
	ID       uuid.UUID
	Attempts int
	Reason   string
}
