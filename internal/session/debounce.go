package session

import (
	"sync"
	"time"
)

// DefaultDebounce is the settle delay between the last keystroke and the
// committed query.
const DefaultDebounce = 300 * time.Millisecond

// DebounceState is the phase of a Debouncer.
type DebounceState int

const (
	// Idle: nothing typed since the last cancel.
	Idle DebounceState = iota
	// Pending: input received, timer running.
	Pending
	// Committed: the timer elapsed and the value was delivered.
	Committed
)

func (s DebounceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// Debouncer delivers only the last value of a burst of input. Each Input
// while Pending stops the running timer and starts a new one.
//
// The commit callback receives the sequence number of the input that armed
// the timer; callers that mutate shared state should compare it with Seq
// under their own lock to discard commits that raced with a later Input or
// Cancel.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	state    DebounceState
	value    string
	seq      uint64
	onCommit func(value string, seq uint64)
}

// NewDebouncer creates a debouncer. delay <= 0 uses DefaultDebounce.
func NewDebouncer(delay time.Duration, onCommit func(value string, seq uint64)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:    delay,
		onCommit: onCommit,
	}
}

// Input records value and restarts the timer.
func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.state = Pending
	d.value = value

	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.state != Pending {
		// Superseded by a later Input or a Cancel.
		d.mu.Unlock()
		return
	}
	d.state = Committed
	d.timer = nil
	value := d.value
	d.mu.Unlock()

	if d.onCommit != nil {
		d.onCommit(value, seq)
	}
}

// Flush commits a pending value immediately. It reports whether anything
// was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.state != Pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = Committed
	value, seq := d.value, d.seq
	d.mu.Unlock()

	if d.onCommit != nil {
		d.onCommit(value, seq)
	}
	return true
}

// Cancel drops any pending value and returns to Idle.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.state = Idle
	d.value = ""
}

// State returns the current phase and the last input value.
func (d *Debouncer) State() (DebounceState, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.value
}

// Seq returns the sequence number of the latest Input or Cancel.
func (d *Debouncer) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}
