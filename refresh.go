package lined

import (
	"bytes"
	"fmt"
)

// Refresh mode bits. CLEAN erases what the previous refresh drew, WRITE
// draws the current prompt and buffer. Hide is CLEAN alone, Show is WRITE
// alone, everything else is both.
type refreshFlags int

const (
	refreshClean refreshFlags = 1 << iota
	refreshWrite

	refreshAll = refreshClean | refreshWrite
)

// The whole redraw is assembled into one buffer and written in a single
// call; per-sequence writes flicker visibly on slow serial links.

func (s *State) refreshLine() {
	s.refreshWithFlags(refreshAll)
}

func (s *State) refreshWithFlags(flags refreshFlags) {
	if s.ed.multiLine {
		s.refreshMultiLine(flags)
	} else {
		s.refreshSingleLine(flags)
	}
}

// refreshSingleLine redraws within one terminal row. The visible window is
// scrolled horizontally so the cursor always fits: leading bytes are
// dropped while the cursor sits past the right edge, then the tail is
// clipped to the width.
func (s *State) refreshSingleLine(flags refreshFlags) {
	buf := s.buf
	length := len(s.buf)
	pos := s.pos

	for pos > 0 && s.plen+pos >= s.cols {
		buf = buf[1:]
		length--
		pos--
	}
	for length > 0 && s.plen+length > s.cols {
		length--
	}

	ab := new(bytes.Buffer)
	ab.WriteByte('\r')
	if flags&refreshWrite != 0 {
		ab.WriteString(s.prompt)
		if s.ed.maskMode {
			for i := 0; i < length; i++ {
				ab.WriteByte('*')
			}
		} else {
			ab.Write(buf[:length])
		}
		s.showHints(ab)
	}
	ab.WriteString("\x1b[0K")
	if flags&refreshWrite != 0 {
		fmt.Fprintf(ab, "\r\x1b[%dC", pos+s.plen)
	}
	s.ed.writeOut(ab.Bytes())
}

// refreshMultiLine redraws a line that wraps over several terminal rows.
// The clean phase walks down to the last previously drawn row and erases
// upwards; the write phase redraws and then climbs back to the cursor row.
func (s *State) refreshMultiLine(flags refreshFlags) {
	plen := s.plen
	rows := (plen + len(s.buf) + s.cols - 1) / s.cols // rows used by current buf
	if rows < 1 {
		rows = 1
	}
	rpos := (plen + s.oldPos + s.cols) / s.cols // cursor relative row
	oldRows := s.oldRows

	s.oldRows = rows

	ab := new(bytes.Buffer)
	if flags&refreshClean != 0 {
		// Go to the last drawn row, then erase and climb.
		if oldRows-rpos > 0 {
			fmt.Fprintf(ab, "\x1b[%dB", oldRows-rpos)
		}
		for j := 0; j < oldRows-1; j++ {
			ab.WriteString("\r\x1b[0K\x1b[1A")
		}
	}
	// Clean the top row.
	ab.WriteString("\r\x1b[0K")

	if flags&refreshWrite != 0 {
		ab.WriteString(s.prompt)
		if s.ed.maskMode {
			for i := 0; i < len(s.buf); i++ {
				ab.WriteByte('*')
			}
		} else {
			ab.Write(s.buf)
		}
		s.showHints(ab)

		// With the cursor on the margin at end of buffer the terminal
		// leaves it hanging invisibly past the edge; force the wrap.
		if s.pos > 0 && s.pos == len(s.buf) && (s.pos+plen)%s.cols == 0 {
			ab.WriteString("\n\r")
			rows++
			if rows > s.oldRows {
				s.oldRows = rows
			}
		}

		rpos2 := (plen + s.pos + s.cols) / s.cols
		if rows-rpos2 > 0 {
			fmt.Fprintf(ab, "\x1b[%dA", rows-rpos2)
		}
		if col := (plen + s.pos) % s.cols; col != 0 {
			fmt.Fprintf(ab, "\r\x1b[%dC", col)
		} else {
			ab.WriteByte('\r')
		}
	}

	s.oldPos = s.pos

	s.ed.writeOut(ab.Bytes())
}

// showHints appends the callback-supplied hint text after the buffer,
// clipped to the space left on the row and wrapped in its SGR attributes.
func (s *State) showHints(ab *bytes.Buffer) {
	cb := s.ed.hintsCallback
	if cb == nil || s.plen+len(s.buf) >= s.cols {
		return
	}
	hint := cb(string(s.buf))
	if hint == nil || hint.Text == "" {
		return
	}
	text := hint.Text
	if maxLen := s.cols - (s.plen + len(s.buf)); len(text) > maxLen {
		text = text[:maxLen]
	}
	color, bold := hint.Color, 0
	if hint.Bold {
		bold = 1
	}
	if bold == 1 && color == 0 {
		color = 37
	}
	styled := color != 0 || bold != 0
	if styled {
		fmt.Fprintf(ab, "\x1b[%d;%dm", bold, color)
	}
	ab.WriteString(text)
	if styled {
		ab.WriteString("\x1b[0m")
	}
}

// canFastInsert reports whether an append at end of buffer may skip the
// full refresh and echo the one character directly. The predicate is the
// same for every caller: single-line mode only, no hints to redraw, and
// the line still fits on the row.
func (s *State) canFastInsert() bool {
	return !s.ed.multiLine && s.ed.hintsCallback == nil && s.plen+len(s.buf) < s.cols
}
