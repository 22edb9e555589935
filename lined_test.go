package lined

import (
	"bytes"
	"testing"
)

// fakeTerm drives the editor from a canned byte stream and captures
// everything it writes. The clock advances a fixed amount per sample so
// tests choose between "typed" (slow) and "pasted" (instant) input.
type fakeTerm struct {
	in    *bytes.Reader
	out   bytes.Buffer
	cols  int
	clock int64
	tick  int64
}

func newFakeTerm(input string, cols int) *fakeTerm {
	return &fakeTerm{in: bytes.NewReader([]byte(input)), cols: cols, tick: 100}
}

func (t *fakeTerm) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *fakeTerm) Flush() error                { return nil }
func (t *fakeTerm) ReadByte() (byte, error)     { return t.in.ReadByte() }

func (t *fakeTerm) Millis() int64 {
	t.clock += t.tick
	return t.clock
}

func (t *fakeTerm) Size() (int, int, bool) { return t.cols, 24, true }

func newTestEditor(input string, cols int) (*Editor, *fakeTerm) {
	ft := newFakeTerm(input, cols)
	ed := NewEditor(ft)
	ed.SetOutputLock(nopLocker{})
	return ed, ft
}

// newTestState arms a session on a fake terminal and discards the prompt
// bytes so assertions see only what the operation under test emitted.
func newTestState(t *testing.T, input string, cols int) (*State, *fakeTerm) {
	t.Helper()
	ed, ft := newTestEditor(input, cols)
	s, err := ed.Start("> ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ft.out.Reset()
	return s, ft
}

func setLine(s *State, line string) {
	s.buf = append(s.buf[:0], line...)
	s.pos = len(s.buf)
}

func checkInvariants(t *testing.T, s *State) {
	t.Helper()
	if s.pos < 0 || s.pos > len(s.buf) {
		t.Fatalf("cursor out of range: pos=%d len=%d", s.pos, len(s.buf))
	}
	if len(s.buf) > s.buflen {
		t.Fatalf("buffer over capacity: len=%d cap=%d", len(s.buf), s.buflen)
	}
	if h := s.ed.history; len(h) > 0 && (s.historyIndex < 0 || s.historyIndex >= len(h)) {
		t.Fatalf("history index out of range: %d of %d", s.historyIndex, len(h))
	}
}
