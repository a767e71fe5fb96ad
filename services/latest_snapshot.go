package services

import (
	"firechat/domain"
	"sync"
)

// latestSnapshot is a one-slot mailbox: a new snapshot replaces the unread one,
// and a snapshot older than the last pushed is dropped.
type latestSnapshot struct {
	mu     sync.Mutex
	ch     chan domain.Snapshot
	last   domain.Snapshot
	closed bool
}

func newLatestSnapshot() *latestSnapshot {
	return &latestSnapshot{ch: make(chan domain.Snapshot, 1)}
}

func (l *latestSnapshot) Push(snapshot domain.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || snapshot.At.Before(l.last.At) {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.last = snapshot
	l.ch <- snapshot
}

func (l *latestSnapshot) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}
