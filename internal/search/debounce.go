// Package search turns search-field keystrokes into paged user directory
// queries.
package search

import "time"

// DefaultDebounce is the quiescence window before a search term is committed.
const DefaultDebounce = 500 * time.Millisecond

// Token is a pending commit handed out by Debouncer.Input. The event loop
// delivers it back through Fire once the debounce interval has elapsed.
type Token struct {
	seq       uint64
	Text      string
	Deadline  time.Time
	Immediate bool // empty text: already committed, nothing to schedule
}

// Debouncer collapses a burst of search-field edits into a single committed
// term. It keeps no timers of its own: the owning event loop schedules each
// token (for example with tea.Tick) so commits arrive in the same sequence
// as keystrokes. A Debouncer is not safe for concurrent use.
type Debouncer struct {
	interval  time.Duration
	now       func() time.Time
	seq       uint64
	committed uint64
}

// NewDebouncer returns a debouncer with the given window. A nil now uses
// time.Now.
func NewDebouncer(interval time.Duration, now func() time.Time) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	if now == nil {
		now = time.Now
	}
	return &Debouncer{interval: interval, now: now}
}

func (d *Debouncer) Interval() time.Duration { return d.interval }

// Input records the full current text of the search field and supersedes
// any pending token. Empty text is committed immediately.
func (d *Debouncer) Input(text string) Token {
	d.seq++
	if text == "" {
		d.committed = d.seq
		return Token{seq: d.seq, Immediate: true}
	}
	return Token{seq: d.seq, Text: text, Deadline: d.now().Add(d.interval)}
}

// Fire returns the committed text for tok. It reports false when tok has
// been superseded by later input, was already fired, or arrives before
// its deadline.
func (d *Debouncer) Fire(tok Token) (string, bool) {
	if !d.Pending(tok) {
		return "", false
	}
	if d.now().Before(tok.Deadline) {
		return "", false
	}
	d.committed = tok.seq
	return tok.Text, true
}

// Pending reports whether tok is the latest input and has not fired yet.
func (d *Debouncer) Pending(tok Token) bool {
	return !tok.Immediate && tok.seq == d.seq && d.committed != tok.seq
}
