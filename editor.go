// Package lined is a small line editing library for terminals that speak
// a subset of the VT100 escape set. It reads a prompt, lets the user edit
// a single line with the usual keystrokes (cursor movement, kill, transpose,
// tab completion, history recall) and hands the finished line back to the
// host. The editor is driven one byte at a time, so it works both as a
// blocking ReadLine and as a feed-style API for event driven programs, and
// it keeps its output small enough for slow UART-style channels.
package lined

import (
	"errors"
	"sync"
	"time"
)

const (
	defaultHistoryMaxLen = 100
	defaultMaxLine       = 4096
	minimalMaxLine       = 64
	defaultPasteDelay    = 30 * time.Millisecond
)

var (
	// ErrMore is returned by Feed while the line is still being edited.
	ErrMore = errors.New("lined: line editing in progress")
	// ErrInterrupted is returned when the user presses Ctrl-C.
	ErrInterrupted = errors.New("lined: interrupted")
	// ErrTooShort is returned by SetMaxLineLen for lengths below the floor.
	ErrTooShort = errors.New("lined: max line length below minimum")
	// ErrUnsupported is returned by Probe when the input channel cannot be
	// switched to non-blocking reads, so terminal presence is unknown.
	ErrUnsupported = errors.New("lined: non-blocking reads unsupported")
	// ErrNoResponse is returned by Probe when the terminal did not answer
	// the device status report in time.
	ErrNoResponse = errors.New("lined: no response to device status report")
)

// Completions collects the candidate strings produced by a completion
// callback for one TAB cycle.
type Completions struct {
	items []string
}

// Add appends a candidate to the list.
func (lc *Completions) Add(str string) {
	lc.items = append(lc.items, str)
}

// Len returns the number of candidates.
func (lc *Completions) Len() int {
	return len(lc.items)
}

// CompletionCallback is invoked with the current buffer contents when the
// user presses TAB; it fills lc with the candidates to cycle through.
type CompletionCallback func(line string, lc *Completions)

// Hint is advisory text shown to the right of the cursor. Color is an ANSI
// SGR color code; zero leaves the color unset, except that a bold hint with
// zero color is drawn in white (37).
type Hint struct {
	Text  string
	Color int
	Bold  bool
}

// HintsCallback is invoked with the current buffer contents during a
// refresh; returning nil draws no hint.
type HintsCallback func(line string) *Hint

// nopLocker is the output lock used when the host does not share the
// terminal with other writers.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Editor holds everything that outlives a single line: the terminal, the
// mode flags, the callbacks and the history. It is not safe for concurrent
// use; the output lock only serializes terminal writes against other
// producers sharing the same channel.
type Editor struct {
	term Terminal
	out  sync.Locker

	maskMode   bool
	multiLine  bool
	dumbMode   bool
	maxLineLen int
	pasteDelay time.Duration

	completionCallback CompletionCallback
	hintsCallback      HintsCallback

	history       []string
	historyMaxLen int
}

// NewEditor returns an editor bound to term. A nil term binds the editor to
// the process TTY (stdin/stdout).
func NewEditor(term Terminal) *Editor {
	if term == nil {
		term = NewTTY()
	}
	return &Editor{
		term:          term,
		out:           &sync.Mutex{},
		maxLineLen:    defaultMaxLine,
		pasteDelay:    defaultPasteDelay,
		historyMaxLen: defaultHistoryMaxLen,
	}
}

// SetMaskMode makes the refresh draw '*' in place of every buffer byte,
// for passwords and other secrets.
func (ed *Editor) SetMaskMode(on bool) {
	ed.maskMode = on
}

// SetMultiLine selects the multi-line refresh strategy. Single line is the
// default.
func (ed *Editor) SetMultiLine(on bool) {
	ed.multiLine = on
}

// SetDumbMode bypasses editing for terminals that do not process escape
// sequences: input is echoed and collected until newline.
func (ed *Editor) SetDumbMode(on bool) {
	ed.dumbMode = on
}

// IsDumbMode reports whether dumb mode is active.
func (ed *Editor) IsDumbMode() bool {
	return ed.dumbMode
}

// SetMaxLineLen sets the line buffer capacity for new sessions. Lengths
// below 64 are rejected with ErrTooShort.
func (ed *Editor) SetMaxLineLen(n int) error {
	if n < minimalMaxLine {
		return ErrTooShort
	}
	ed.maxLineLen = n
	return nil
}

// SetPasteDelay tunes the inter-byte interval below which input is treated
// as pasted rather than typed. Zero disables the heuristic. Note that a key
// held down long enough to auto-repeat can defeat it either way.
func (ed *Editor) SetPasteDelay(d time.Duration) {
	ed.pasteDelay = d
}

// SetOutputLock installs the mutex acquired around every externally visible
// output region. Hosts whose other threads write to the same terminal pass
// the lock they share; nil restores a private one.
func (ed *Editor) SetOutputLock(l sync.Locker) {
	if l == nil {
		l = &sync.Mutex{}
	}
	ed.out = l
}

// SetCompletionCallback registers the tab completion callback. A nil
// callback disables completion.
func (ed *Editor) SetCompletionCallback(fn CompletionCallback) {
	ed.completionCallback = fn
}

// SetHintsCallback registers the hints callback. A nil callback disables
// hints.
func (ed *Editor) SetHintsCallback(fn HintsCallback) {
	ed.hintsCallback = fn
}

// ClearScreen clears the whole screen and homes the cursor.
func (ed *Editor) ClearScreen() {
	ed.out.Lock()
	defer ed.out.Unlock()
	ed.clearScreen()
}

func (ed *Editor) clearScreen() {
	ed.writeOut([]byte("\x1b[H\x1b[2J"))
}

func (ed *Editor) beep() {
	ed.writeOut([]byte{'\a'})
}

// writeOut pushes one batch of bytes to the terminal and drains it. Write
// failures are reported to the caller; most refresh paths ignore them, the
// session start does not.
func (ed *Editor) writeOut(p []byte) error {
	if _, err := ed.term.Write(p); err != nil {
		return err
	}
	return ed.term.Flush()
}
