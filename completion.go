package lined

// The completion engine sits between the dispatcher and the editing ops.
// From the first TAB until the cycle ends every input byte passes through
// completeLine, which either consumes it (navigation within the cycle) or
// hands it back for normal dispatch after committing the shown candidate.

// completeLine processes one byte under completion. The candidate list is
// obtained from the callback once when the cycle opens and cached for the
// rest of the cycle. The returned flag is true when the byte was consumed;
// otherwise next must be re-dispatched by the caller.
func (s *State) completeLine(c byte) (next byte, consumed bool) {
	if s.comp == nil {
		lc := new(Completions)
		s.ed.completionCallback(string(s.buf), lc)
		s.comp = lc
	}
	lc := s.comp

	if lc.Len() == 0 {
		// Nothing to offer; the keystroke falls through untouched.
		s.ed.beep()
		s.endCompletion()
		return c, false
	}

	switch c {
	case keyTab:
		if !s.inCompletion {
			s.inCompletion = true
			s.completionIdx = 0
		} else {
			s.completionIdx = (s.completionIdx + 1) % (lc.Len() + 1)
			if s.completionIdx == lc.Len() {
				// Cycled onto the original-buffer slot.
				s.ed.beep()
			}
		}
		c, consumed = 0, true
	case keyEsc:
		// Cancel: the real buffer was never touched.
		s.endCompletion()
		c, consumed = 0, true
	default:
		// Any other key commits the candidate on display, then gets
		// processed as if typed after it.
		if s.completionIdx < lc.Len() {
			line := lc.items[s.completionIdx]
			if len(line) > s.buflen {
				line = line[:s.buflen]
			}
			s.buf = append(s.buf[:0], line...)
			s.pos = len(s.buf)
		}
		s.endCompletion()
	}

	// Show the candidate, or the original buffer when the cycle is over
	// or parked on the original slot.
	if s.inCompletion && s.completionIdx < lc.Len() {
		s.refreshWithCompletion(lc, refreshAll)
	} else {
		s.refreshLine()
	}
	return c, consumed
}

func (s *State) endCompletion() {
	s.inCompletion = false
	s.completionIdx = 0
	s.comp = nil
}

// refreshWithCompletion redraws as if the buffer held the candidate under
// the completion cursor. The substitution is transparent: the real buffer
// and cursor are restored before returning, so the edit state is only
// changed by an actual commit.
func (s *State) refreshWithCompletion(lc *Completions, flags refreshFlags) {
	if s.completionIdx < lc.Len() {
		savedBuf, savedPos := s.buf, s.pos
		s.buf = []byte(lc.items[s.completionIdx])
		s.pos = len(s.buf)
		s.refreshWithFlags(flags)
		s.buf, s.pos = savedBuf, savedPos
		return
	}
	s.refreshWithFlags(flags)
}
