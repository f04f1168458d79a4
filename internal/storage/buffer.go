// Package storage decouples the redirect hot path from PostgreSQL: clicks
// go into an in-memory channel buffer and a background writer batch-inserts
// them.
package storage

import (
	"sync"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// Buffer is a channel-based event buffer for non-blocking click ingestion.
type Buffer struct {
	events chan domain.ClickEvent
	closed chan struct{}
	once   sync.Once
}

// NewBuffer creates a buffer with a buffered channel of the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		events: make(chan domain.ClickEvent, capacity),
		closed: make(chan struct{}),
	}
}

// Send performs a non-blocking send of an event into the buffer.
// It returns false if the buffer channel is full; the click is dropped
// rather than stalling the redirect.
func (b *Buffer) Send(event domain.ClickEvent) bool {
	select {
	case b.events <- event:
		return true
	default:
		return false
	}
}

// Len returns the number of events currently in the buffer channel.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Close signals the buffer to stop accepting events.
// It is safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}
