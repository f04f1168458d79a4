package storage_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/storage"
)

func newTestEvent(t *testing.T) domain.ClickEvent {
	t.Helper()

	return domain.ClickEvent{
		LinkCode:    "aB3xK9mQ",
		Fingerprint: "fp-one",
		Referrer:    "https://blog.example.com",
		DeviceType:  "desktop",
		ClickedAt:   time.Now(),
	}
}

func TestBuffer_Send(t *testing.T) {
	buf := storage.NewBuffer(10)
	defer buf.Close()

	if ok := buf.Send(newTestEvent(t)); !ok {
		t.Fatal("expected Send to succeed on non-full buffer")
	}

	if got := buf.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestBuffer_SendFull(t *testing.T) {
	buf := storage.NewBuffer(1)
	defer buf.Close()

	event := newTestEvent(t)

	// Fill the buffer.
	if ok := buf.Send(event); !ok {
		t.Fatal("expected first Send to succeed")
	}

	// Second send should fail (non-blocking).
	if ok := buf.Send(event); ok {
		t.Fatal("expected Send to return false when buffer is full")
	}
}

func TestBuffer_CloseIdempotent(t *testing.T) {
	buf := storage.NewBuffer(1)

	buf.Close()
	buf.Close()
}
