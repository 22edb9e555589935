package lined

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the byte channel pair the editor talks through, plus the
// monotonic clock used by the paste heuristic. Writes are batched by the
// refresh engine; Flush must drain anything the channel buffers (some
// UART/USB-CDC backends hold data until told otherwise).
type Terminal interface {
	io.Writer
	ReadByte() (byte, error)
	Flush() error
	Millis() int64
}

// sizeReporter is implemented by terminals that can answer the width
// question directly (an ioctl, a cached winsize). When absent the editor
// falls back to the cursor position probe.
type sizeReporter interface {
	Size() (cols, rows int, ok bool)
}

// nonblockReader is implemented by terminals whose input channel can be
// switched to non-blocking reads; Probe needs it.
type nonblockReader interface {
	SetNonblock(on bool) error
}

// TTY is the stdin/stdout implementation of Terminal. It owns the termios
// state of the input and restores it on Restore.
type TTY struct {
	in    *bufio.Reader
	inf   *os.File
	out   *bufio.Writer
	outf  *os.File
	start time.Time

	nonblock bool

	rawSaved bool
	saved    unix.Termios
}

// NewTTY wraps the process stdin/stdout.
func NewTTY() *TTY {
	return NewTTYFiles(os.Stdin, os.Stdout)
}

// NewTTYFiles wraps an arbitrary file pair, e.g. /dev/tty opened directly.
func NewTTYFiles(in, out *os.File) *TTY {
	return &TTY{
		in:    bufio.NewReader(in),
		inf:   in,
		out:   bufio.NewWriter(out),
		outf:  out,
		start: time.Now(),
	}
}

func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Flush empties the stdio buffer and then syncs the descriptor; the sync
// matters on USB-CDC serial consoles which otherwise sit on the bytes.
func (t *TTY) Flush() error {
	if err := t.out.Flush(); err != nil {
		return err
	}
	t.outf.Sync()
	return nil
}

func (t *TTY) ReadByte() (byte, error) {
	if t.nonblock {
		// Bypass the buffered reader so EAGAIN surfaces instead of
		// parking the goroutine in the runtime poller.
		if t.in.Buffered() > 0 {
			return t.in.ReadByte()
		}
		var b [1]byte
		n, err := unix.Read(int(t.inf.Fd()), b[:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return b[0], nil
	}
	return t.in.ReadByte()
}

// Millis returns milliseconds since the TTY was created; only differences
// are meaningful.
func (t *TTY) Millis() int64 {
	return time.Since(t.start).Milliseconds()
}

// Size answers the width question with the winsize ioctl, trying the
// controlling terminal when stdout is redirected.
func (t *TTY) Size() (int, int, bool) {
	if cols, rows, err := term.GetSize(int(t.outf.Fd())); err == nil && cols > 0 {
		return cols, rows, true
	}
	fd, err := unix.Open("/dev/tty", unix.O_RDONLY, 0)
	if err != nil {
		return 0, 0, false
	}
	defer unix.Close(fd)
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}

// SetNonblock toggles non-blocking reads on the input descriptor.
func (t *TTY) SetNonblock(on bool) error {
	if err := unix.SetNonblock(int(t.inf.Fd()), on); err != nil {
		return err
	}
	t.nonblock = on
	return nil
}

// IsTerminal reports whether the input is an interactive terminal; hosts
// use it to fall back to dumb mode for pipes.
func (t *TTY) IsTerminal() bool {
	return term.IsTerminal(int(t.inf.Fd()))
}

// Raw puts the input into raw mode: no echo, no canonical buffering, no
// signal generation, so Ctrl-C and friends arrive as plain bytes.
func (t *TTY) Raw() error {
	tio, err := getTermios(int(t.inf.Fd()))
	if err != nil {
		return err
	}
	if !t.rawSaved {
		t.saved = *tio
		t.rawSaved = true
	}
	tio.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	tio.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0
	return setTermios(int(t.inf.Fd()), tio)
}

// Restore undoes Raw.
func (t *TTY) Restore() error {
	if !t.rawSaved {
		return nil
	}
	return setTermios(int(t.inf.Fd()), &t.saved)
}

// columns measures the terminal width for a new session. A direct answer
// from the terminal wins; otherwise the width is derived from two cursor
// position reports around a far-right move, since ESC[999C clips at the
// margin. Anything that fails to parse means 80.
func (ed *Editor) columns() int {
	if sr, ok := ed.term.(sizeReporter); ok {
		if cols, _, ok := sr.Size(); ok && cols > 0 {
			return cols
		}
	}

	start, err := ed.cursorColumn()
	if err != nil {
		return 80
	}
	if ed.writeOut([]byte("\x1b[999C")) != nil {
		return 80
	}
	cols, err := ed.cursorColumn()
	if err != nil {
		return 80
	}
	if cols > start {
		// Put the cursor back where the probe found it.
		seq := append([]byte("\x1b["), strconv.Itoa(cols-start)...)
		ed.writeOut(append(seq, 'D'))
	}
	return cols
}

// cursorColumn asks the terminal where the cursor is (DSR 6) and returns
// the column from the ESC[rows;colsR response.
func (ed *Editor) cursorColumn() (int, error) {
	if err := ed.writeOut([]byte("\x1b[6n")); err != nil {
		return 0, err
	}
	var resp []byte
	for len(resp) < 31 {
		c, err := ed.term.ReadByte()
		if err != nil || c == 'R' {
			break
		}
		// Some UARTs sneak newlines into the response.
		if c != '\n' {
			resp = append(resp, c)
		}
	}
	if len(resp) < 2 || resp[0] != keyEsc || resp[1] != '[' {
		return 0, ErrNoResponse
	}
	_, colsStr, ok := bytes.Cut(resp[2:], []byte(";"))
	if !ok {
		return 0, ErrNoResponse
	}
	cols, err := strconv.Atoi(string(colsStr))
	if err != nil {
		return 0, ErrNoResponse
	}
	return cols, nil
}

// Probe checks whether something VT100-shaped is on the other end of the
// channel: it sends DSR 5 and waits up to half a second for the four byte
// ESC[0n (or ESC[3n) status reply. Terminals whose input cannot go
// non-blocking report ErrUnsupported rather than a false negative.
func (ed *Editor) Probe() error {
	nb, ok := ed.term.(nonblockReader)
	if !ok {
		return ErrUnsupported
	}
	if err := nb.SetNonblock(true); err != nil {
		return ErrUnsupported
	}
	defer nb.SetNonblock(false)

	ed.out.Lock()
	defer ed.out.Unlock()
	if err := ed.writeOut([]byte("\x1b[5n")); err != nil {
		return err
	}

	got := 0
	for waited := time.Duration(0); waited < 500*time.Millisecond && got < 4; waited += 10 * time.Millisecond {
		time.Sleep(10 * time.Millisecond)
		c, err := ed.term.ReadByte()
		if err != nil {
			continue
		}
		if got == 0 && c != keyEsc {
			break
		}
		got++
	}
	if got < 4 {
		return ErrNoResponse
	}
	return nil
}

// promptWidth is the number of columns the prompt occupies: escape
// sequences are invisible and wide runes count double.
func promptWidth(prompt string) int {
	const (
		stFree = iota
		stEsc
		stCSI
	)
	width := 0
	state := stFree
	for _, r := range prompt {
		switch state {
		case stFree:
			if r == rune(keyEsc) {
				state = stEsc
			} else {
				width += runewidth.RuneWidth(r)
			}
		case stEsc:
			if r == '[' {
				state = stCSI
			} else {
				state = stFree
			}
		case stCSI:
			if r >= 0x40 && r <= 0x7e {
				state = stFree
			}
		}
	}
	return width
}
