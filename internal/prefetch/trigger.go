// Package prefetch watches the playback queue and appends related tracks
// before the listener runs out of upcoming ones.
package prefetch

// DefaultThreshold is the remaining depth at or below which a prefetch fires.
const DefaultThreshold = 2

// State is the trigger state. The zero value is Idle with no triggered index.
type State struct {
	Fetching      bool
	LastTriggered int
	HasTriggered  bool
}

// Trigger decides when a prefetch should start. It allows at most one fetch
// in flight and fires at most once per active index in a row.
type Trigger struct {
	threshold int
	state     State
}

// NewTrigger creates an idle trigger. A negative threshold uses
// DefaultThreshold.
func NewTrigger(threshold int) *Trigger {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Trigger{threshold: threshold}
}

// Threshold returns the remaining-depth threshold.
func (t *Trigger) Threshold() int {
	return t.threshold
}

// Evaluate checks the queue shape after an active-track change. When it fires
// the trigger moves to Fetching and records activeIndex.
func (t *Trigger) Evaluate(tracksLen, activeIndex int) (int, bool) {
	if t.state.Fetching || activeIndex < 0 || activeIndex >= tracksLen {
		return 0, false
	}
	if t.state.HasTriggered && t.state.LastTriggered == activeIndex {
		return 0, false
	}
	remaining := tracksLen - (activeIndex + 1)
	if remaining > t.threshold {
		return 0, false
	}

	t.state = State{Fetching: true, LastTriggered: activeIndex, HasTriggered: true}
	return activeIndex, true
}

// Settle returns the trigger to Idle, whatever the fetch outcome was.
func (t *Trigger) Settle() {
	t.state.Fetching = false
}

// State returns a copy of the current state.
func (t *Trigger) State() State {
	return t.state
}
