// Package progress tracks how far a visit has gotten through
// materializing its changesets, and fans updates out to anyone
// watching — a CLI printing a status line, or the web dashboard pushing
// frames over a websocket.
package progress

import (
	"sync"
	"time"
)

// Status is a snapshot of a visit's materialization progress at one
// point in time.
type Status struct {
	ChangesetsDone  int
	ChangesetsTotal int
	Percentage      float64
	Operation       string
	ETA             time.Duration
	StartTime       time.Time
}

// Subscriber receives a Status every time the Reporter's state changes.
type Subscriber func(Status)

// Reporter tracks one visit's progress and notifies subscribers on
// every change. A Reporter is safe for concurrent use: internal/visit
// calls Increment from the materialization loop while the web
// dashboard calls Subscribe from its HTTP handler when it starts a
// visit.
type Reporter struct {
	mu          sync.RWMutex
	done        int
	total       int
	operation   string
	startTime   time.Time
	subscribers []Subscriber
}

// NewReporter returns a Reporter tracking progress against total
// changesets.
func NewReporter(total int) *Reporter {
	return &Reporter{total: total}
}

// Start marks the beginning of materialization and notifies
// subscribers of the initial (zero) status.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.startTime = time.Now()
	r.mu.Unlock()
	r.notify()
}

// Reset rearms the Reporter for a new total, used when a long-lived
// `serve` process runs a fresh visit against a Reporter that already
// reported a prior one to completion.
func (r *Reporter) Reset(total int) {
	r.mu.Lock()
	r.done = 0
	r.total = total
	r.startTime = time.Time{}
	r.mu.Unlock()
	r.notify()
}

// Increment advances the done count by one changeset.
func (r *Reporter) Increment() {
	r.mu.Lock()
	r.done++
	r.mu.Unlock()
	r.notify()
}

// SetOperation records a short human-readable description of the
// current phase (e.g. "fetching rlog", "materializing changesets").
func (r *Reporter) SetOperation(op string) {
	r.mu.Lock()
	r.operation = op
	r.mu.Unlock()
	r.notify()
}

// Done returns the number of changesets materialized so far.
func (r *Reporter) Done() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// Percentage returns the fraction of total changesets done, as 0-100.
func (r *Reporter) Percentage() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return percentage(r.done, r.total)
}

// Operation returns the current phase description.
func (r *Reporter) Operation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operation
}

// ETA estimates the time remaining, extrapolating from the rate
// observed so far. It returns 0 before any progress has been made.
func (r *Reporter) ETA() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return eta(r.done, r.total, r.startTime)
}

// Subscribe registers fn to receive every subsequent Status. The
// returned func removes the subscription.
func (r *Reporter) Subscribe(fn Subscriber) func() {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	idx := len(r.subscribers) - 1
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		r.subscribers[idx] = nil
		r.mu.Unlock()
	}
}

func (r *Reporter) notify() {
	r.mu.RLock()
	status := Status{
		ChangesetsDone:  r.done,
		ChangesetsTotal: r.total,
		Percentage:      percentage(r.done, r.total),
		Operation:       r.operation,
		ETA:             eta(r.done, r.total, r.startTime),
		StartTime:       r.startTime,
	}
	subscribers := make([]Subscriber, len(r.subscribers))
	copy(subscribers, r.subscribers)
	r.mu.RUnlock()

	for _, fn := range subscribers {
		if fn != nil {
			fn(status)
		}
	}
}

func percentage(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

func eta(done, total int, startTime time.Time) time.Duration {
	if done == 0 || startTime.IsZero() {
		return 0
	}
	elapsed := time.Since(startTime)
	if elapsed <= 0 {
		return 0
	}
	rate := float64(done) / elapsed.Seconds()
	if rate == 0 {
		return 0
	}
	remaining := float64(total-done) / rate
	return time.Duration(remaining * float64(time.Second))
}
