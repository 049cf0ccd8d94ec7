package playback

// ActiveTrackChanged is emitted when the active queue index changes.
//
// Emitted by:
//   - Skip: when jumping to a different index
//   - Next: when advancing to the following track
//   - Remove: when the active track is removed and the index now points at
//     another track
//   - Start/Add: when the first track enters an empty queue
//
// NOT emitted by:
//   - Play/Pause: state changes keep the same active track
type ActiveTrackChanged struct {
	Index int
}

// QueueChanged is emitted when the queue contents change. It carries no data:
// subscribers re-read the queue with GetQueue.
type QueueChanged struct{}

// QueueEnded is emitted when Next is called on the last track.
type QueueEnded struct{}

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}
