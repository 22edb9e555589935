package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/termtools/lined"
)

const historyFile = ".lined_history"

func main() {
	tty := lined.NewTTY()
	editor := lined.NewEditor(tty)

	if !tty.IsTerminal() {
		editor.SetDumbMode(true)
	} else if err := editor.Probe(); err != nil && !errors.Is(err, lined.ErrUnsupported) {
		editor.SetDumbMode(true)
	}

	if !editor.IsDumbMode() {
		if err := tty.Raw(); err != nil {
			fmt.Fprintln(os.Stderr, "raw mode:", err)
			os.Exit(1)
		}
		defer tty.Restore()
	}

	editor.HistoryLoad(historyFile)

	editor.SetCompletionCallback(func(line string, lc *lined.Completions) {
		for _, cmd := range []string{"help", "history", "mask", "multiline", "exit"} {
			if strings.HasPrefix(cmd, line) {
				lc.Add(cmd)
			}
		}
	})
	editor.SetHintsCallback(func(line string) *lined.Hint {
		if line == "mask" || line == "multiline" {
			return &lined.Hint{Text: " on|off", Color: 35}
		}
		return nil
	})

	for {
		line, err := editor.ReadLine("lined> ")
		switch {
		case errors.Is(err, lined.ErrInterrupted):
			continue
		case errors.Is(err, io.EOF):
			editor.HistorySave(historyFile)
			return
		case err != nil:
			fmt.Fprintln(os.Stderr, "read:", err)
			return
		}

		switch {
		case line == "exit":
			editor.HistorySave(historyFile)
			return
		case line == "history":
			editor.HistorySave(historyFile)
			fmt.Println("saved to", historyFile)
		case strings.HasPrefix(line, "mask"):
			editor.SetMaskMode(strings.HasSuffix(line, "on"))
		case strings.HasPrefix(line, "multiline"):
			editor.SetMultiLine(strings.HasSuffix(line, "on"))
		case line != "":
			fmt.Printf("echo: %q\n", line)
		}
	}
}
