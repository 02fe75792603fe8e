package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwell-dev/inkwell/internal/document"
	"github.com/inkwell-dev/inkwell/internal/provider"
)

// Options configures a Controller. Zero values fall back to the protocol
// defaults.
type Options struct {
	// RateLimit is the minimum spacing between accepted submissions.
	RateLimit time.Duration
	// FailedDwell is how long the failed state lingers before auto-clearing.
	FailedDwell time.Duration
	// RequestTimeout bounds each provider call. The state machine itself
	// never times out a request; the bound lives here at the provider edge.
	RequestTimeout time.Duration
	// MaxTokens is the token budget sent with each continuation request.
	MaxTokens int
	// Sequencer paces the reveal; nil means NewSequencer().
	Sequencer *Sequencer
	// Now is the clock; nil means time.Now. Tests inject it.
	Now func() time.Time
}

// DefaultRequestTimeout bounds a single provider call.
const DefaultRequestTimeout = 60 * time.Second

// Controller owns one editor session: it is the only writer of the session
// state, the only party allowed to mutate the document, and the only
// launcher of reveal tasks. All event handling is serialized under one lock;
// provider calls and reveal pacing happen outside it.
type Controller struct {
	doc  *document.Document
	prov provider.Provider
	seq  *Sequencer

	rateLimit      time.Duration
	failedDwell    time.Duration
	requestTimeout time.Duration
	maxTokens      int
	now            func() time.Time

	// docMu serializes document mutations against session transitions, so a
	// reveal step cannot land in a document Reset has already cleared.
	docMu sync.Mutex

	mu         sync.Mutex
	state      State
	dwellTimer *time.Timer
	observers  []func(State)
	pending    []State
	notifying  bool
}

// NewController creates a Controller for the given document and provider.
func NewController(doc *document.Document, prov provider.Provider, opts Options) *Controller {
	c := &Controller{
		doc:            doc,
		prov:           prov,
		seq:            opts.Sequencer,
		rateLimit:      opts.RateLimit,
		failedDwell:    opts.FailedDwell,
		requestTimeout: opts.RequestTimeout,
		maxTokens:      opts.MaxTokens,
		now:            opts.Now,
	}
	if c.seq == nil {
		c.seq = NewSequencer()
	}
	if c.rateLimit == 0 {
		c.rateLimit = DefaultRateLimit
	}
	if c.failedDwell == 0 {
		c.failedDwell = DefaultFailedDwell
	}
	if c.requestTimeout == 0 {
		c.requestTimeout = DefaultRequestTimeout
	}
	if c.maxTokens == 0 {
		c.maxTokens = provider.DefaultMaxTokens
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Document returns the document this session mutates.
func (c *Controller) Document() *document.Document { return c.doc }

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnTransition registers fn to be called after every effective transition
// with the new state. Callbacks run outside the controller lock.
func (c *Controller) OnTransition(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Submit snapshots the document's plain text and, if the machine accepts the
// submission, fires a continuation request in the background. It returns
// whether the submission was accepted; a rejection (empty text, rate limit,
// wrong phase) performs no I/O.
func (c *Controller) Submit(ctx context.Context) bool {
	text := c.doc.PlainText()

	c.mu.Lock()
	next, ok := Transition(c.state, Submit{Text: text, Now: c.now()}, c.rateLimit)
	if !ok {
		phase := c.state.Phase
		c.mu.Unlock()
		slog.Debug("submission rejected", "phase", phase.String())
		return false
	}
	c.applyLocked(next)
	gen := next.Generation
	c.mu.Unlock()
	c.notify()

	slog.Debug("continuation requested", "generation", gen, "chars", len(text))
	go c.request(ctx, text, gen)
	return true
}

// Reset returns the session to idle and clears the document. An in-flight
// provider call is not interrupted; its eventual result will carry a stale
// generation and be discarded. The transition and the clear happen under the
// mutation lock, so a running reveal can never insert into the cleared
// document.
func (c *Controller) Reset() {
	c.docMu.Lock()
	c.mu.Lock()
	next, _ := Transition(c.state, Reset{}, c.rateLimit)
	c.applyLocked(next)
	c.mu.Unlock()
	c.doc.Clear()
	c.docMu.Unlock()
	c.notify()
}

// request performs the provider call for generation gen and feeds the result
// back into the machine. Runs on its own goroutine.
func (c *Controller) request(ctx context.Context, text string, gen uint64) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	out, err := c.prov.Complete(ctx, provider.Request{
		Prompt:    text,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		c.deliver(ResultFail{Reason: err.Error(), Generation: gen})
		return
	}
	c.deliver(ResultOK{Text: out, Generation: gen})
}

// deliver applies a result event; stale generations fall out of Transition
// as no-ops and are logged at debug only, never surfaced.
func (c *Controller) deliver(ev Event) {
	c.mu.Lock()
	next, ok := Transition(c.state, ev, c.rateLimit)
	if !ok {
		c.mu.Unlock()
		slog.Debug("discarding stale or inapplicable result")
		return
	}
	c.applyLocked(next)
	phase := next.Phase
	gen := next.Generation
	generated := next.GeneratedText
	c.mu.Unlock()
	c.notify()

	switch phase {
	case PhaseRevealing:
		go c.reveal(generated, gen)
	case PhaseFailed:
		c.armDwellTimer(gen)
	}
}

// reveal runs the sequencer for generation gen. The cancellation predicate
// is re-evaluated at every character boundary, so a Reset or supersession is
// observed within one step's delay.
func (c *Controller) reveal(text string, gen uint64) {
	cancelled := func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.state.Phase != PhaseRevealing || c.state.Generation != gen
	}
	// Re-check under the mutation lock so the check and the append are one
	// atomic step with respect to Reset.
	insert := func(ch string) {
		c.docMu.Lock()
		defer c.docMu.Unlock()
		if cancelled() {
			return
		}
		c.doc.Append(ch)
	}

	completed := c.seq.Run(text, insert, cancelled)
	if !completed {
		slog.Debug("reveal interrupted", "generation", gen)
		return
	}

	c.mu.Lock()
	next, ok := Transition(c.state, RevealDone{Now: c.now()}, c.rateLimit)
	if ok && next.Generation == gen {
		c.applyLocked(next)
		c.mu.Unlock()
		c.notify()
		c.doc.MoveCursorToEnd()
		slog.Debug("reveal complete", "generation", gen, "chars", len(text))
		return
	}
	c.mu.Unlock()
}

// armDwellTimer schedules the failed-state auto-clear. The handle is stored
// so a superseding event cancels it instead of letting it fire into a state
// it no longer applies to.
func (c *Controller) armDwellTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != PhaseFailed || c.state.Generation != gen {
		return
	}
	c.dwellTimer = time.AfterFunc(c.failedDwell, func() {
		c.mu.Lock()
		next, ok := Transition(c.state, DwellElapsed{}, c.rateLimit)
		if !ok {
			c.mu.Unlock()
			return
		}
		c.applyLocked(next)
		c.mu.Unlock()
		c.notify()
	})
}

// applyLocked records the new state, stops any pending dwell timer, and
// queues the transition for observer delivery. Caller holds c.mu and must
// call notify after releasing it.
func (c *Controller) applyLocked(next State) {
	if c.dwellTimer != nil {
		c.dwellTimer.Stop()
		c.dwellTimer = nil
	}
	c.state = next
	c.pending = append(c.pending, next)
}

// notify drains queued transitions to the observers. Transitions are queued
// under the same lock that applies them, and at most one goroutine drains at
// a time, so observers see states in the order events were processed even
// when transitions race on different goroutines. Observers themselves run
// outside the controller lock.
func (c *Controller) notify() {
	c.mu.Lock()
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		observers := c.observers
		c.mu.Unlock()
		for _, fn := range observers {
			fn(next)
		}
		c.mu.Lock()
	}
	c.notifying = false
	c.mu.Unlock()
}
