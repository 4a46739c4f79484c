// ABOUTME: Transient status messages shown in the bottom bar
// ABOUTME: StatusBoard implements player.Notifier for the terminal UI

package tui

import "time"

// notice is one message on the board
type notice struct {
	msg   string
	isErr bool
	at    time.Time // When it became visible
	seq   int
}

// StatusBoard shows user-facing notifications one at a time. Errors stay
// up for their full lifetime and later messages wait behind them; a new
// informational message replaces the visible one otherwise. It is written
// and read from the Bubble Tea update loop only.
type StatusBoard struct {
	cur     notice
	pending []notice

	seq       int
	scheduled int // seq of the last notice an expiry tick was scheduled for

	now func() time.Time
}

// NewStatusBoard creates an empty board
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{now: time.Now}
}

// Success shows an informational message
func (b *StatusBoard) Success(msg string) {
	b.post(msg, false)
}

// Error shows an error message
func (b *StatusBoard) Error(msg string) {
	b.post(msg, true)
}

func (b *StatusBoard) post(msg string, isErr bool) {
	b.advance()

	b.seq++
	n := notice{msg: msg, isErr: isErr, seq: b.seq}

	if !b.visible() || (!b.cur.isErr && len(b.pending) == 0) {
		n.at = b.now()
		b.cur = n

		return
	}

	// Consecutive informational messages collapse to the newest
	if last := len(b.pending) - 1; !isErr && last >= 0 && !b.pending[last].isErr {
		b.pending[last] = n
		return
	}

	b.pending = append(b.pending, n)
}

// visible reports whether cur is still within its lifetime
func (b *StatusBoard) visible() bool {
	return b.cur.msg != "" && b.now().Sub(b.cur.at) < statusMessageDuration
}

// advance promotes queued messages whose predecessor has expired. Each
// queued message is shown for a full lifetime from the moment the previous
// one expired.
func (b *StatusBoard) advance() {
	for len(b.pending) > 0 && !b.visible() {
		next := b.pending[0]
		b.pending = b.pending[1:]

		next.at = b.cur.at.Add(statusMessageDuration)
		b.cur = next
	}
}

// Current returns the visible message, if any
func (b *StatusBoard) Current() (msg string, isErr bool, ok bool) {
	b.advance()

	if !b.visible() {
		return "", false, false
	}

	return b.cur.msg, b.cur.isErr, true
}

// Queued returns how many messages wait behind the visible one
func (b *StatusBoard) Queued() int {
	b.advance()
	return len(b.pending)
}

// nextExpiry returns the remaining lifetime of a visible message that has
// no expiry tick yet
func (b *StatusBoard) nextExpiry() (time.Duration, bool) {
	b.advance()

	if !b.visible() || b.scheduled == b.cur.seq {
		return 0, false
	}

	b.scheduled = b.cur.seq

	return statusMessageDuration - b.now().Sub(b.cur.at), true
}
