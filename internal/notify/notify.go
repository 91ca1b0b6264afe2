// Package notify delivers user-facing success and failure messages produced by
// the cart engine to whatever surface displays them.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Notification is a single message for the customer.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notifications. Implementations must not block the caller.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Kind, string) {}

// logNotifier writes notifications to a logger.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs each notification.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *logNotifier) Notify(kind Kind, message string) {
	event := n.logger.Info()
	if kind == Error {
		event = n.logger.Warn()
	}
	event.Str("kind", string(kind)).Msg(message)
}

// Buffer keeps the most recent notifications until they are drained.
type Buffer struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewBuffer creates a buffer holding at most capacity notifications; the oldest
// are dropped first.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		items:    make([]Notification, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Notify appends a notification.
func (b *Buffer) Notify(kind Kind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, Notification{Kind: kind, Message: message, At: b.now()})
}

// Drain returns the buffered notifications in arrival order and clears the buffer.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Notification, len(b.items))
	copy(out, b.items)
	b.items = b.items[:0]
	return out
}

// Len returns the number of buffered notifications.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

type multi []Notifier

// Multi fans a notification out to every notifier.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(kind Kind, message string) {
	for _, n := range m {
		n.Notify(kind, message)
	}
}
