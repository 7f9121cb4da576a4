package library

import (
	"sync"
	"time"
)

// Notifier coalesces rapid state changes into a single observer callback.
//
// Mutations call Mark; after the delay elapses the callback fires once, no
// matter how many marks accumulated. Coalescing bounds redraw frequency
// only: the settled state observed by the callback is independent of
// timing, and tests can force an immediate settle with Flush.
type Notifier struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	dirty   bool
	stopped bool
}

// NewNotifier creates a notifier invoking fn after delay once marked.
// A nil fn or zero delay is allowed; Mark then only records dirtiness.
func NewNotifier(delay time.Duration, fn func()) *Notifier {
	return &Notifier{delay: delay, fn: fn}
}

// Mark records a pending change and arms the coalescing timer.
func (n *Notifier) Mark() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}
	n.dirty = true
	if n.fn == nil || n.delay <= 0 || n.timer != nil {
		return
	}
	n.timer = time.AfterFunc(n.delay, n.fire)
}

// fire runs the callback for a settled batch of marks.
func (n *Notifier) fire() {
	n.mu.Lock()
	n.timer = nil
	if !n.dirty || n.stopped {
		n.mu.Unlock()
		return
	}
	n.dirty = false
	fn := n.fn
	n.mu.Unlock()
	fn()
}

// Flush fires immediately if a change is pending, cancelling the timer.
func (n *Notifier) Flush() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if !n.dirty || n.stopped || n.fn == nil {
		n.dirty = false
		n.mu.Unlock()
		return
	}
	n.dirty = false
	fn := n.fn
	n.mu.Unlock()
	fn()
}

// Stop abandons any pending notification. Used on project switch so updates
// tied to the old state never fire.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	n.dirty = false
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// Dirty reports whether a notification is pending.
func (n *Notifier) Dirty() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dirty
}
