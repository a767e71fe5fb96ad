package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrEmptyWords     = fmt.Errorf("no words have been found")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")

	// Moderation
	ErrMalformedText = fmt.Errorf("text is not valid UTF-8")
	ErrLexiconCheck  = fmt.Errorf("lexicon check failed")
	ErrWriteBack     = fmt.Errorf("moderation write-back failed")
	ErrInvalidMask   = fmt.Errorf("mask character must be a symbol, punctuation or space")
	ErrMaskInLexicon = fmt.Errorf("lexicon word contains the mask character")
	ErrUnknownPolicy = fmt.Errorf("unknown moderation policy")

	// Trigger dispatch
	ErrInvocationTimeout = fmt.Errorf("trigger invocation timed out")
	ErrTriggerPanic      = fmt.Errorf("trigger panic")
	ErrDeadLettered      = fmt.Errorf("retry budget exhausted, event dead-lettered")

	// Message store
	ErrEmptyText       = fmt.Errorf("message text is empty")
	ErrTextTooLong     = fmt.Errorf("message text is too long")
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrNotPending      = fmt.Errorf("message has no pending trigger")
	ErrStoreClosed     = fmt.Errorf("message store is not accepting events")

	// Identity
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnauthenticated    = fmt.Errorf("unauthenticated")
	ErrTokenRevoked       = fmt.Errorf("token has been revoked")
)
