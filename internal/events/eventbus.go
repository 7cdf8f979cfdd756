package events

import (
	"log/slog"
	"sync/atomic"

	"github.com/DrewThomasson/sound-monitor/internal/logging"
)

// Bus fans notifications out from the ingestion worker. The worker publishes
// without blocking; consumers receive over a buffered channel.
type Bus struct {
	ch      chan Notification
	dropped atomic.Uint64
	logger  *slog.Logger
}

// DefaultBufferSize is large enough that a consumer stalled for a few
// seconds does not cause drops at realistic event rates.
const DefaultBufferSize = 256

// NewBus creates a bus with the given buffer size, or DefaultBufferSize
// when size is not positive.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Bus{
		ch:     make(chan Notification, size),
		logger: logging.ForService("events"),
	}
}

// Publish places a notification on the bus without blocking. It returns
// false when the buffer is full and the notification was dropped.
func (b *Bus) Publish(n Notification) bool {
	select {
	case b.ch <- n:
		return true
	default:
		b.dropped.Add(1)
		b.logger.Warn("notification bus full, dropping notification",
			"type", string(n.Type),
			"dropped_total", b.dropped.Load(),
		)
		return false
	}
}

// Notifications returns the receive side of the bus.
func (b *Bus) Notifications() <-chan Notification {
	return b.ch
}

// Dropped returns how many notifications were dropped because the buffer
// was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes the bus. Only the publishing side may call it, after the
// worker has fully stopped.
func (b *Bus) Close() {
	close(b.ch)
}
