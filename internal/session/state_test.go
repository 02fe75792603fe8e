package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestSubmitFromIdle(t *testing.T) {
	next, ok := Transition(State{}, Submit{Text: "Once upon a time", Now: t0}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseRequesting, next.Phase)
	assert.Equal(t, "Once upon a time", next.SubmittedText)
	assert.Equal(t, t0, next.StartedAt)
	assert.Equal(t, uint64(1), next.Generation)
	assert.True(t, next.IsLoading())
}

func TestSubmitEmptyTextIsNoOp(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  "} {
		next, ok := Transition(State{}, Submit{Text: text, Now: t0}, DefaultRateLimit)
		assert.False(t, ok, "text %q should be rejected", text)
		assert.Equal(t, State{}, next)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	s := State{LastRequestTime: t0}

	// 400ms after the last completed request: rejected.
	next, ok := Transition(s, Submit{Text: "more", Now: t0.Add(400 * time.Millisecond)}, DefaultRateLimit)
	assert.False(t, ok)
	assert.Equal(t, s, next)

	// Exactly at the limit: accepted.
	next, ok = Transition(s, Submit{Text: "more", Now: t0.Add(time.Second)}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseRequesting, next.Phase)
}

func TestSubmitIgnoredOutsideIdle(t *testing.T) {
	for _, phase := range []Phase{PhaseRequesting, PhaseRevealing, PhaseFailed} {
		s := State{Phase: phase, Generation: 1}
		next, ok := Transition(s, Submit{Text: "more", Now: t0}, DefaultRateLimit)
		assert.False(t, ok, "phase %s", phase)
		assert.Equal(t, s, next)
	}
}

func TestResultOKEntersRevealing(t *testing.T) {
	s := State{Phase: PhaseRequesting, SubmittedText: "Hello", StartedAt: t0, Generation: 3}
	next, ok := Transition(s, ResultOK{Text: "world", Generation: 3}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseRevealing, next.Phase)
	assert.Equal(t, "world", next.GeneratedText)
	// Requesting payload cleared on exit.
	assert.Empty(t, next.SubmittedText)
	assert.True(t, next.StartedAt.IsZero())
}

func TestStaleResultDiscarded(t *testing.T) {
	s := State{Phase: PhaseRequesting, Generation: 5}

	next, ok := Transition(s, ResultOK{Text: "late", Generation: 4}, DefaultRateLimit)
	assert.False(t, ok)
	assert.Equal(t, s, next)

	next, ok = Transition(s, ResultFail{Reason: "late", Generation: 4}, DefaultRateLimit)
	assert.False(t, ok)
	assert.Equal(t, s, next)
}

func TestResultIgnoredOutsideRequesting(t *testing.T) {
	for _, phase := range []Phase{PhaseIdle, PhaseRevealing, PhaseFailed} {
		s := State{Phase: phase, Generation: 2}
		_, ok := Transition(s, ResultOK{Text: "x", Generation: 2}, DefaultRateLimit)
		assert.False(t, ok, "phase %s", phase)
	}
}

func TestResultFailEntersFailed(t *testing.T) {
	s := State{Phase: PhaseRequesting, SubmittedText: "Hello", Generation: 1}
	next, ok := Transition(s, ResultFail{Reason: "quota exceeded", Generation: 1}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseFailed, next.Phase)
	assert.True(t, next.IsError())
	assert.Equal(t, "quota exceeded", next.ErrorMessage())
	assert.Empty(t, next.SubmittedText)
}

func TestRevealDoneStampsLastRequestTime(t *testing.T) {
	s := State{Phase: PhaseRevealing, GeneratedText: "world", Generation: 1}
	done := t0.Add(4 * time.Second)
	next, ok := Transition(s, RevealDone{Now: done}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseIdle, next.Phase)
	assert.Equal(t, done, next.LastRequestTime)
	assert.Empty(t, next.GeneratedText)
}

func TestDwellElapsedClearsFailed(t *testing.T) {
	s := State{Phase: PhaseFailed, Reason: "boom", Generation: 1}
	next, ok := Transition(s, DwellElapsed{}, DefaultRateLimit)
	assert.True(t, ok)
	assert.Equal(t, PhaseIdle, next.Phase)
	assert.Empty(t, next.Reason)
	assert.Empty(t, next.ErrorMessage())
}

func TestDwellElapsedIgnoredOutsideFailed(t *testing.T) {
	s := State{Phase: PhaseRevealing, GeneratedText: "x"}
	_, ok := Transition(s, DwellElapsed{}, DefaultRateLimit)
	assert.False(t, ok)
}

func TestResetFromAnyPhase(t *testing.T) {
	for _, s := range []State{
		{},
		{Phase: PhaseRequesting, SubmittedText: "x", Generation: 2},
		{Phase: PhaseRevealing, GeneratedText: "y", Generation: 2},
		{Phase: PhaseFailed, Reason: "z", Generation: 2},
	} {
		next, ok := Transition(s, Reset{}, DefaultRateLimit)
		assert.True(t, ok)
		assert.Equal(t, PhaseIdle, next.Phase)
		assert.Empty(t, next.SubmittedText)
		assert.Empty(t, next.GeneratedText)
		assert.Empty(t, next.Reason)
		// Session-lifetime metadata survives.
		assert.Equal(t, s.Generation, next.Generation)
	}
}

func TestLastRequestTimeSurvivesFullCycle(t *testing.T) {
	s := State{LastRequestTime: t0}

	s, _ = Transition(s, Submit{Text: "go on", Now: t0.Add(2 * time.Second)}, DefaultRateLimit)
	assert.Equal(t, t0, s.LastRequestTime)

	s, _ = Transition(s, ResultFail{Reason: "down", Generation: s.Generation}, DefaultRateLimit)
	assert.Equal(t, t0, s.LastRequestTime)

	s, _ = Transition(s, DwellElapsed{}, DefaultRateLimit)
	assert.Equal(t, t0, s.LastRequestTime)
}

func TestZeroRateLimitDisablesSpacing(t *testing.T) {
	s := State{LastRequestTime: t0}
	next, ok := Transition(s, Submit{Text: "again", Now: t0.Add(time.Millisecond)}, 0)
	assert.True(t, ok)
	assert.Equal(t, PhaseRequesting, next.Phase)
}
