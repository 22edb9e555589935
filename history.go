package lined

import (
	"bufio"
	"os"
	"strings"
)

// History is a bounded list of prior lines, oldest first. The entry at the
// end doubles as the working slot while a session is active.

// HistoryAdd appends line to the history. Adding is refused when the
// history is disabled (max length 0) or when line repeats the newest
// entry; when the bound is hit the oldest entry is dropped.
func (ed *Editor) HistoryAdd(line string) bool {
	if ed.historyMaxLen == 0 {
		return false
	}
	if n := len(ed.history); n > 0 && ed.history[n-1] == line {
		return false
	}
	if len(ed.history) == ed.historyMaxLen {
		copy(ed.history, ed.history[1:])
		ed.history = ed.history[:len(ed.history)-1]
	}
	ed.history = append(ed.history, line)
	return true
}

// SetHistoryMaxLen resizes the history bound, keeping the newest entries.
// Lengths below 1 are refused.
func (ed *Editor) SetHistoryMaxLen(n int) bool {
	if n < 1 {
		return false
	}
	if len(ed.history) > n {
		ed.history = append([]string(nil), ed.history[len(ed.history)-n:]...)
	}
	ed.historyMaxLen = n
	return true
}

// HistoryFree drops every entry.
func (ed *Editor) HistoryFree() {
	ed.history = nil
}

// HistorySave writes the history to path, one entry per line, truncating
// whatever was there.
func (ed *Editor) HistorySave(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, entry := range ed.history {
		if _, err := w.WriteString(entry + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// HistoryLoad reads path line by line into the history through HistoryAdd,
// so the usual suppression and bounding apply. A missing file is an error;
// an empty one is not.
func (ed *Editor) HistoryLoad(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		ed.HistoryAdd(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return scanner.Err()
}

// popWorkingSlot removes the scratch entry registered by Start, so a
// finished (or aborted) session leaves no empty line behind.
func (ed *Editor) popWorkingSlot() {
	if len(ed.history) > 0 {
		ed.history = ed.history[:len(ed.history)-1]
	}
}
