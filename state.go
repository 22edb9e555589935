package lined

// State is the per-session edit state: the line being built, the cursor,
// and the geometry the refresh engine last drew. It is created by Start and
// must be discarded once Feed returns a terminal value and Stop has run.
type State struct {
	ed *Editor

	prompt string
	plen   int // prompt width in columns

	buf    []byte // line under edit; len(buf) is the used byte count
	buflen int    // capacity cap, enforced by the editing ops
	pos    int    // cursor offset in bytes, 0 <= pos <= len(buf)

	cols int // terminal width, measured once at session start

	// Geometry of the previous draw, used by the multi-line clean phase.
	oldPos  int
	oldRows int

	inCompletion  bool
	completionIdx int
	comp          *Completions // candidate list cached for the active cycle

	historyIndex int // 0 = working line, k = k-th entry back
}

// Line returns the current buffer contents.
func (s *State) Line() string {
	return string(s.buf)
}

// Start arms a new editing session: it measures the terminal, registers the
// empty working slot at the end of the history and prints the prompt. A
// write failure is reported here so the host can bail out before the
// session is in an unrecoverable half-drawn state.
func (ed *Editor) Start(prompt string) (*State, error) {
	s := &State{
		ed:     ed,
		prompt: prompt,
		plen:   promptWidth(prompt),
		buflen: ed.maxLineLen - 1,
	}
	if ed.dumbMode {
		// A dumb terminal cannot answer the width probe, and the
		// echo-and-collect path never needs it.
		s.cols = 80
	} else {
		s.cols = ed.columns()
	}

	ed.out.Lock()
	defer ed.out.Unlock()
	if !ed.dumbMode {
		// The latest history entry is always the line under edit,
		// initially empty. It is popped again when the session ends.
		ed.HistoryAdd("")
	}
	if err := ed.writeOut([]byte(prompt)); err != nil {
		return nil, err
	}
	return s, nil
}

// Stop ends the session, moving output past the edited line.
func (s *State) Stop() {
	s.ed.out.Lock()
	defer s.ed.out.Unlock()
	s.ed.writeOut([]byte{'\n'})
}

// Hide erases the prompt and the edited line so another producer can write
// to the terminal; Show redraws them afterwards. Both take the output lock,
// the producer in between must hold the same lock itself.
func (s *State) Hide() {
	s.ed.out.Lock()
	defer s.ed.out.Unlock()
	s.refreshWithFlags(refreshClean)
}

// Show redraws the prompt and the line hidden by Hide, including the
// candidate under display when a completion cycle is active.
func (s *State) Show() {
	s.ed.out.Lock()
	defer s.ed.out.Unlock()
	if s.inCompletion && s.comp != nil {
		s.refreshWithCompletion(s.comp, refreshWrite)
	} else {
		s.refreshWithFlags(refreshWrite)
	}
}

// ReadLine is the blocking facade: one prompt in, one finished line out.
// Accepted non-empty lines are appended to the history. The terminal must
// already be in raw mode (TTY.Raw) unless dumb mode is on.
func (ed *Editor) ReadLine(prompt string) (string, error) {
	s, err := ed.Start(prompt)
	if err != nil {
		return "", err
	}
	var line string
	for {
		line, err = s.Feed()
		if err != ErrMore {
			break
		}
	}
	s.Stop()
	if err == nil && line != "" {
		ed.HistoryAdd(line)
	}
	return line, err
}
