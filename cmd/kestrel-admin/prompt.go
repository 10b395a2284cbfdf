package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// terminalInput returns in as a file when it is an interactive terminal.
func terminalInput(in io.Reader) (*os.File, bool) {
	f, ok := in.(*os.File)
	if !ok {
		return nil, false
	}
	info, err := f.Stat()
	if err != nil {
		return nil, false
	}
	return f, info.Mode()&os.ModeCharDevice != 0
}

// promptSecret reads a line from reader with terminal echo disabled when
// in, the source reader wraps, is a tty.
func promptSecret(out io.Writer, in io.Reader, reader *bufio.Reader, label string) (string, error) {
	tty, ok := terminalInput(in)
	if !ok {
		return prompt(out, reader, label)
	}
	echoDisabled := setTerminalEcho(tty, false) == nil
	defer func() {
		if echoDisabled {
			_ = setTerminalEcho(tty, true)
		}
		fmt.Fprintln(out)
	}()
	return prompt(out, reader, label)
}

func setTerminalEcho(tty *os.File, enable bool) error {
	arg := "-echo"
	if enable {
		arg = "echo"
	}
	cmd := exec.Command("stty", arg)
	cmd.Stdin = tty
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
