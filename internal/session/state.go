// Package session implements the editor session protocol: the state machine
// deciding when a continuation request may run, the controller that
// orchestrates provider calls and timers around it, and the sequencer that
// reveals generated text into the document one character at a time.
package session

import (
	"strings"
	"time"
)

// Phase identifies which variant of the session state is active.
type Phase int

const (
	// PhaseIdle is the initial and resting state.
	PhaseIdle Phase = iota
	// PhaseRequesting means a continuation request is in flight.
	PhaseRequesting
	// PhaseRevealing means a request succeeded and incremental insertion
	// is in progress.
	PhaseRevealing
	// PhaseFailed means the request failed; it auto-clears after a dwell.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseRevealing:
		return "revealing"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Default protocol timings.
const (
	// DefaultRateLimit is the minimum spacing between accepted submissions.
	DefaultRateLimit = time.Second
	// DefaultFailedDwell is how long a failure banner lingers before the
	// session returns to idle on its own.
	DefaultFailedDwell = 3 * time.Second
)

// State is the session state. Exactly one phase is active; the payload
// fields below are populated only while their owning phase is active and
// are cleared on any transition away from it. LastRequestTime is
// session-lifetime metadata and survives every transition.
type State struct {
	Phase Phase

	// LastRequestTime is the completion time of the most recent successful
	// reveal; zero if none. Sole input to rate limiting.
	LastRequestTime time.Time

	// SubmittedText and StartedAt belong to PhaseRequesting.
	SubmittedText string
	StartedAt     time.Time

	// GeneratedText belongs to PhaseRevealing.
	GeneratedText string

	// Reason belongs to PhaseFailed.
	Reason string

	// Generation counts accepted submissions. Results carry the generation
	// of the request they answer; mismatched results are stale and dropped.
	Generation uint64
}

// IsLoading reports whether a continuation request is in flight.
func (s State) IsLoading() bool { return s.Phase == PhaseRequesting }

// IsError reports whether the session is showing a failure.
func (s State) IsError() bool { return s.Phase == PhaseFailed }

// ErrorMessage returns the failure reason, or "" outside PhaseFailed.
func (s State) ErrorMessage() string {
	if s.Phase == PhaseFailed {
		return s.Reason
	}
	return ""
}

// Event is the closed set of inputs the machine responds to.
type Event interface{ isEvent() }

// Submit asks for a continuation of Text. Rejected silently if Text trims
// to empty or the rate limit has not elapsed at Now.
type Submit struct {
	Text string
	Now  time.Time
}

// ResultOK delivers a successful continuation for request Generation.
type ResultOK struct {
	Text       string
	Generation uint64
}

// ResultFail delivers a failed continuation for request Generation.
type ResultFail struct {
	Reason     string
	Generation uint64
}

// Reset returns the session to idle from any phase, clearing transient data.
type Reset struct{}

// RevealDone reports that the reveal sequencer ran to completion at Now.
type RevealDone struct {
	Now time.Time
}

// DwellElapsed reports that the failed-state dwell timer fired.
type DwellElapsed struct{}

func (Submit) isEvent()       {}
func (ResultOK) isEvent()     {}
func (ResultFail) isEvent()   {}
func (Reset) isEvent()        {}
func (RevealDone) isEvent()   {}
func (DwellElapsed) isEvent() {}

// Transition is the total transition function. It returns the next state
// and whether the event had any effect. Events that do not apply to the
// current phase (including stale results) leave the state unchanged.
// The rate limit is fixed at construction by the controller; rateLimit <= 0
// disables it.
func Transition(s State, ev Event, rateLimit time.Duration) (State, bool) {
	switch e := ev.(type) {
	case Submit:
		if s.Phase != PhaseIdle {
			return s, false
		}
		if strings.TrimSpace(e.Text) == "" {
			return s, false
		}
		if rateLimit > 0 && !s.LastRequestTime.IsZero() && e.Now.Sub(s.LastRequestTime) < rateLimit {
			return s, false
		}
		next := clearTransient(s)
		next.Phase = PhaseRequesting
		next.SubmittedText = e.Text
		next.StartedAt = e.Now
		next.Generation++
		return next, true

	case ResultOK:
		if s.Phase != PhaseRequesting || e.Generation != s.Generation {
			return s, false
		}
		next := clearTransient(s)
		next.Phase = PhaseRevealing
		next.GeneratedText = e.Text
		return next, true

	case ResultFail:
		if s.Phase != PhaseRequesting || e.Generation != s.Generation {
			return s, false
		}
		next := clearTransient(s)
		next.Phase = PhaseFailed
		next.Reason = e.Reason
		return next, true

	case Reset:
		next := clearTransient(s)
		next.Phase = PhaseIdle
		return next, true

	case RevealDone:
		if s.Phase != PhaseRevealing {
			return s, false
		}
		next := clearTransient(s)
		next.Phase = PhaseIdle
		// Rate limiting counts from completion of the reveal, not from
		// the submission that started it.
		next.LastRequestTime = e.Now
		return next, true

	case DwellElapsed:
		if s.Phase != PhaseFailed {
			return s, false
		}
		next := clearTransient(s)
		next.Phase = PhaseIdle
		return next, true
	}
	return s, false
}

// clearTransient drops all per-phase payload while keeping session-lifetime
// metadata (LastRequestTime, Generation).
func clearTransient(s State) State {
	return State{
		LastRequestTime: s.LastRequestTime,
		Generation:      s.Generation,
	}
}
