package lined

import (
	"io"
	"time"
)

// Key bytes the dispatcher acts on.
const (
	keyCtrlA     = 1
	keyCtrlB     = 2
	keyCtrlC     = 3
	keyCtrlD     = 4
	keyCtrlE     = 5
	keyCtrlF     = 6
	keyCtrlH     = 8
	keyTab       = 9
	keyEnter     = 10
	keyCtrlK     = 11
	keyCtrlL     = 12
	keyCtrlN     = 14
	keyCtrlP     = 16
	keyCtrlT     = 20
	keyCtrlU     = 21
	keyCtrlW     = 23
	keyEsc       = 27
	keyBackspace = 127
)

// Feed consumes one logical input event: a byte, or the few bytes of an
// escape sequence. It returns ("", ErrMore) while the line is still open;
// Enter yields the finished line, Ctrl-C yields ErrInterrupted and Ctrl-D
// on an empty buffer yields io.EOF. Event-driven hosts call it whenever at
// least one byte is available; the blocking facade just loops.
func (s *State) Feed() (string, error) {
	if s.ed.dumbMode {
		return s.feedDumb()
	}

	// Two clock samples around the read; bytes that arrive faster than a
	// human can type are paste traffic and skip the editing machinery.
	t1 := s.ed.term.Millis()
	c, err := s.ed.term.ReadByte()
	if err != nil {
		return "", err
	}
	t2 := s.ed.term.Millis()

	s.ed.out.Lock()
	defer s.ed.out.Unlock()

	if d := s.ed.pasteDelay; d > 0 && time.Duration(t2-t1)*time.Millisecond < d && c != keyEnter {
		if werr := s.editInsertPasted(c); werr != nil {
			return "", werr
		}
		return "", ErrMore
	}

	if (s.inCompletion || c == keyTab) && s.ed.completionCallback != nil {
		next, consumed := s.completeLine(c)
		if consumed {
			return "", ErrMore
		}
		c = next
	}

	switch c {
	case keyEnter:
		s.ed.popWorkingSlot()
		if s.ed.multiLine {
			s.editMoveEnd()
		}
		if s.ed.hintsCallback != nil {
			// Redraw once without hints so the accepted line is left
			// on screen as the user typed it.
			hc := s.ed.hintsCallback
			s.ed.hintsCallback = nil
			s.refreshLine()
			s.ed.hintsCallback = hc
		}
		return string(s.buf), nil
	case keyCtrlC:
		s.ed.popWorkingSlot()
		return "", ErrInterrupted
	case keyBackspace, keyCtrlH:
		s.editBackspace()
	case keyCtrlD:
		// Delete forward, or end of input on an empty line.
		if len(s.buf) > 0 {
			s.editDelete()
		} else {
			s.ed.popWorkingSlot()
			return "", io.EOF
		}
	case keyCtrlT:
		s.editTranspose()
	case keyCtrlB:
		s.editMoveLeft()
	case keyCtrlF:
		s.editMoveRight()
	case keyCtrlP:
		s.editHistoryStep(historyPrev)
	case keyCtrlN:
		s.editHistoryStep(historyNext)
	case keyCtrlU:
		s.editKillLine()
	case keyCtrlK:
		s.editKillToEnd()
	case keyCtrlA:
		s.editMoveHome()
	case keyCtrlE:
		s.editMoveEnd()
	case keyCtrlL:
		s.editClearScreen()
	case keyCtrlW:
		s.editDeletePrevWord()
	case keyEsc:
		s.feedEscape()
	default:
		s.editInsert(c)
	}
	return "", ErrMore
}

// feedEscape drains one ESC-prefixed sequence and maps the handful the
// editor understands; everything else is discarded silently.
func (s *State) feedEscape() {
	s1, err := s.ed.term.ReadByte()
	if err != nil {
		return
	}
	s2, err := s.ed.term.ReadByte()
	if err != nil {
		return
	}

	switch s1 {
	case '[':
		if s2 >= '0' && s2 <= '9' {
			// Extended sequence: one more byte.
			s3, err := s.ed.term.ReadByte()
			if err != nil {
				return
			}
			if s3 == '~' && s2 == '3' { // Delete key
				s.editDelete()
			}
			return
		}
		switch s2 {
		case 'A':
			s.editHistoryStep(historyPrev)
		case 'B':
			s.editHistoryStep(historyNext)
		case 'C':
			s.editMoveRight()
		case 'D':
			s.editMoveLeft()
		case 'H':
			s.editMoveHome()
		case 'F':
			s.editMoveEnd()
		}
	case 'O':
		switch s2 {
		case 'H':
			s.editMoveHome()
		case 'F':
			s.editMoveEnd()
		}
	}
}

// feedDumb is the degraded path for terminals that do not process escape
// sequences: echo and collect until newline, with just enough backspace
// handling to be usable. Arrow-key noise (0x1c-0x1f) is swallowed.
func (s *State) feedDumb() (string, error) {
	s.buf = s.buf[:0]
	s.pos = 0
	for len(s.buf) < s.buflen {
		c, err := s.ed.term.ReadByte()
		if err != nil {
			return "", err
		}
		s.ed.out.Lock()
		if c == '\n' {
			s.ed.out.Unlock()
			break
		}
		if c >= 0x1c && c <= 0x1f {
			s.ed.out.Unlock()
			continue
		}
		if c == keyBackspace || c == keyCtrlH {
			if len(s.buf) > 0 {
				s.buf = s.buf[:len(s.buf)-1]
				s.pos--
			}
			// Erase the symbol under the cursor, then the echoed
			// control byte steps back over it.
			s.ed.writeOut([]byte("\x08 "))
		} else {
			s.buf = append(s.buf, c)
			s.pos++
		}
		s.ed.writeOut([]byte{c})
		s.ed.out.Unlock()
	}
	s.ed.out.Lock()
	s.ed.writeOut([]byte{'\n'})
	s.ed.out.Unlock()
	return string(s.buf), nil
}
