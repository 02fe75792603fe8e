package session

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Default reveal pacing.
const (
	DefaultRevealDelay  = 30 * time.Millisecond
	DefaultRevealJitter = 5 * time.Millisecond
)

// leadingPunctuation is the set of characters that suppress the space
// normally inserted between existing content and a continuation.
const leadingPunctuation = ".,!?;:"

// Sequencer turns a completed continuation into an ordered sequence of
// single-character insertions with randomized per-step timing. It only
// knows how to run; whether to run, and whether a run has been superseded,
// is the controller's decision, surfaced through the cancellation predicate.
type Sequencer struct {
	// BaseDelay is the nominal pause between characters.
	BaseDelay time.Duration
	// Jitter is the half-width of the uniform band sampled around BaseDelay.
	Jitter time.Duration

	// Sleep, if non-nil, replaces time.Sleep. Tests inject it so pacing is
	// deterministic and fast.
	Sleep func(time.Duration)
}

// NewSequencer returns a Sequencer with the default pacing.
func NewSequencer() *Sequencer {
	return &Sequencer{
		BaseDelay: DefaultRevealDelay,
		Jitter:    DefaultRevealJitter,
	}
}

// Prepare returns the exact character sequence a reveal of text will insert:
// the text itself, prefixed by one space unless the trimmed text opens with
// terminal punctuation.
func Prepare(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	if strings.ContainsRune(leadingPunctuation, rune(trimmed[0])) {
		return text
	}
	return " " + text
}

// Run inserts Prepare(text) one character at a time, calling insert for each
// and pausing BaseDelay±Jitter between steps. cancelled is consulted before
// every insertion; once it reports true no further characters are inserted
// and Run returns false. A cancelled run is a normal outcome, not an error.
// Run returns true only when every character was inserted.
func (s *Sequencer) Run(text string, insert func(ch string), cancelled func() bool) bool {
	for _, r := range Prepare(text) {
		if cancelled() {
			return false
		}
		insert(string(r))
		s.pause()
	}
	return true
}

func (s *Sequencer) pause() {
	d := s.BaseDelay
	if s.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(2*s.Jitter)+1)) - s.Jitter
	}
	if d < 0 {
		d = 0
	}
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
