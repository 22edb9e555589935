package lined

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// dsrTerm is a fake terminal without the Size capability, forcing the
// editor through the cursor-position probe.
type dsrTerm struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (t *dsrTerm) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *dsrTerm) Flush() error                { return nil }
func (t *dsrTerm) ReadByte() (byte, error)     { return t.in.ReadByte() }
func (t *dsrTerm) Millis() int64               { return 0 }

func TestPromptWidth(t *testing.T) {
	tests := []struct {
		prompt string
		want   int
	}{
		{"> ", 2},
		{"", 0},
		{"\x1b[32m>\x1b[0m ", 2},
		{"你> ", 4},
		{"\x1b[1;34mgo\x1b[0m$ ", 4},
	}
	for _, tt := range tests {
		if got := promptWidth(tt.prompt); got != tt.want {
			t.Errorf("promptWidth(%q) = %d, want %d", tt.prompt, got, tt.want)
		}
	}
}

func TestColumnsFromSizeReporter(t *testing.T) {
	ed, _ := newTestEditor("", 120)
	if got := ed.columns(); got != 120 {
		t.Errorf("columns = %d, want 120", got)
	}
}

func TestColumnsFromCursorProbe(t *testing.T) {
	term := &dsrTerm{in: bytes.NewReader([]byte("\x1b[1;5R\x1b[1;80R"))}
	ed := NewEditor(term)
	if got := ed.columns(); got != 80 {
		t.Errorf("columns = %d, want 80", got)
	}
	out := term.out.String()
	for _, seq := range []string{"\x1b[6n", "\x1b[999C", "\x1b[75D"} {
		if !strings.Contains(out, seq) {
			t.Errorf("probe output missing %q, got %q", seq, out)
		}
	}
}

func TestColumnsProbeNewlineNoise(t *testing.T) {
	// Some UARTs inject newlines into the DSR response.
	term := &dsrTerm{in: bytes.NewReader([]byte("\x1b[1;\n7R\x1b\n[1;40R"))}
	ed := NewEditor(term)
	if got := ed.columns(); got != 40 {
		t.Errorf("columns = %d, want 40", got)
	}
}

func TestColumnsFallsBackTo80(t *testing.T) {
	term := &dsrTerm{in: bytes.NewReader([]byte("garbage"))}
	ed := NewEditor(term)
	if got := ed.columns(); got != 80 {
		t.Errorf("columns = %d, want 80 on parse failure", got)
	}
}

func TestProbeUnsupportedWithoutNonblock(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	if err := ed.Probe(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Probe = %v, want ErrUnsupported", err)
	}
}

// probeTerm adds non-blocking capability to dsrTerm.
type probeTerm struct {
	dsrTerm
	nonblock bool
}

func (t *probeTerm) SetNonblock(on bool) error {
	t.nonblock = on
	return nil
}

func TestProbeReadsStatusReport(t *testing.T) {
	term := &probeTerm{dsrTerm: dsrTerm{in: bytes.NewReader([]byte("\x1b[0n"))}}
	ed := NewEditor(term)
	ed.SetOutputLock(nopLocker{})
	if err := ed.Probe(); err != nil {
		t.Fatalf("Probe = %v", err)
	}
	if !strings.Contains(term.out.String(), "\x1b[5n") {
		t.Errorf("probe did not send DSR 5, got %q", term.out.String())
	}
	if term.nonblock {
		t.Error("probe left the channel in non-blocking mode")
	}
}

func TestProbeRejectsNonEscapeReply(t *testing.T) {
	term := &probeTerm{dsrTerm: dsrTerm{in: bytes.NewReader([]byte("xxxx"))}}
	ed := NewEditor(term)
	ed.SetOutputLock(nopLocker{})
	if err := ed.Probe(); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("Probe = %v, want ErrNoResponse", err)
	}
}
