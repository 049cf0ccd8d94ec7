package playback

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by queue reads before the engine is started.
var ErrNotInitialized = errors.New("playback engine not initialized")

// ErrIndexOutOfRange is returned when a queue index does not exist.
var ErrIndexOutOfRange = errors.New("queue index out of range")

// ErrDuplicateTrack is returned when an added track id is already queued.
var ErrDuplicateTrack = errors.New("track already queued")

// Engine defines the playback engine contract. The engine owns the
// authoritative queue; everything else reads it through GetQueue.
type Engine interface {
	// Queue reads
	GetQueue() (QueueSnapshot, error)

	// Queue manipulation
	Add(ctx context.Context, payload AddPayload) error
	Remove(index int) error

	// Navigation and playback control
	Skip(index int) error
	Next() error
	Play() error
	Pause() error
	State() State

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
