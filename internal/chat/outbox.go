package chat

import (
	"sync"
	"time"
)

// DefaultSendTimeout is the optimistic-send confirmation window: long enough
// to absorb normal round-trip variance, short enough that a stalled send
// doesn't leave the UI ambiguous indefinitely.
const DefaultSendTimeout = 10 * time.Second

// outbox tracks in-flight optimistic sends for one session: the original
// content per tempID (kept for retry, surviving a failure) and the running
// confirmation timer per tempID (cleared on reconciliation, retry, or
// teardown).
type outbox struct {
	mu      sync.Mutex
	timeout time.Duration
	content map[string]string
	timers  map[string]*time.Timer
}

func newOutbox(timeout time.Duration) *outbox {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &outbox{
		timeout: timeout,
		content: make(map[string]string),
		timers:  make(map[string]*time.Timer),
	}
}

// track records a pending send and arms its confirmation timer. onTimeout
// runs at most once, and only if the send is still unconfirmed when the
// window closes.
func (o *outbox) track(tempID, content string, onTimeout func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.content[tempID] = content
	o.timers[tempID] = time.AfterFunc(o.timeout, func() {
		// Reconciliation and the timer race: whichever takes the timer entry
		// first wins, the loser sees it already gone and does nothing.
		if o.takeTimer(tempID) {
			onTimeout()
		}
	})
}

// takeTimer removes the timer entry, reporting whether it was still present
func (o *outbox) takeTimer(tempID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.timers[tempID]; !ok {
		return false
	}
	delete(o.timers, tempID)
	return true
}

// pendingContent returns the content recorded for a tempID. Present even
// after a timeout marked the send failed; retry needs it.
func (o *outbox) pendingContent(tempID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.content[tempID]
	return c, ok
}

// resolve clears a send that was confirmed by the server
func (o *outbox) resolve(tempID string) {
	o.forget(tempID)
}

// forget drops all record of a tempID: its content and, if still armed, its
// timer.
func (o *outbox) forget(tempID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.content, tempID)
	if t, ok := o.timers[tempID]; ok {
		t.Stop()
		delete(o.timers, tempID)
	}
}

// cancelAll stops every pending timer and clears all records; called on
// teardown so no stale timer fires against a cache that is no longer shown.
func (o *outbox) cancelAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, t := range o.timers {
		t.Stop()
		delete(o.timers, id)
	}
	for id := range o.content {
		delete(o.content, id)
	}
}
