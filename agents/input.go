package agents

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"
)

// CommandKind identifies what the user asked for at the keyboard.
type CommandKind int

const (
	// CommandToggleRecord flips push-to-talk recording on or off.
	CommandToggleRecord CommandKind = iota
	// CommandSubmitText sends the typed line as a user message.
	CommandSubmitText
	// CommandQuit ends the session.
	CommandQuit
)

// Command is one parsed keyboard action.
type Command struct {
	Kind CommandKind
	Text string
}

// keyAction is what a single keystroke does to the line buffer.
type keyAction struct {
	cmd  *Command
	echo string
	buf  []byte
}

// parseKey folds one raw keystroke into the line buffer. Single-letter
// commands only fire on an empty buffer so "query" can be typed as text;
// Ctrl-C always quits.
func parseKey(b byte, buf []byte) keyAction {
	switch {
	case b == 0x03: // Ctrl-C
		return keyAction{cmd: &Command{Kind: CommandQuit}}
	case b == '\r' || b == '\n':
		if len(buf) == 0 {
			return keyAction{}
		}
		return keyAction{cmd: &Command{Kind: CommandSubmitText, Text: string(buf)}, echo: "\r\n"}
	case b == 0x7f || b == 0x08: // backspace
		if len(buf) == 0 {
			return keyAction{}
		}
		return keyAction{buf: buf[:len(buf)-1], echo: "\b \b"}
	case (b == 'r' || b == ' ') && len(buf) == 0:
		return keyAction{cmd: &Command{Kind: CommandToggleRecord}}
	case b == 'q' && len(buf) == 0:
		return keyAction{cmd: &Command{Kind: CommandQuit}}
	case b >= 0x20 && b < 0x7f:
		return keyAction{buf: append(buf, b), echo: string(b)}
	default:
		return keyAction{buf: buf}
	}
}

// Keyboard turns raw terminal input into Commands. It puts stdin into raw
// mode on Run and restores it when Run returns.
type Keyboard struct {
	in  *os.File
	out *os.File
}

func NewKeyboard() *Keyboard {
	return &Keyboard{in: os.Stdin, out: os.Stdout}
}

// Run reads keystrokes and sends parsed commands until the context is
// canceled, the input errors, or a quit command arrives. The quit command
// is delivered before returning. Canceling the context is the only way to
// stop Run from outside; it also unblocks a command send nobody is
// receiving, and the terminal is restored before Run returns.
func (k *Keyboard) Run(ctx context.Context, commands chan<- Command) error {
	fd := int(k.in.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw terminal mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, oldState) }()
	}

	// The reader goroutine stays parked in Read after cancellation; that is
	// fine because stdin has no other consumer and the process is exiting.
	keys := make(chan byte)
	readErr := make(chan error, 1)
	go func() {
		one := make([]byte, 1)
		for {
			if _, err := k.in.Read(one); err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- one[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	var buf []byte
	for {
		var b byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return fmt.Errorf("reading keystroke: %w", err)
		case b = <-keys:
		}

		action := parseKey(b, buf)
		if action.cmd == nil {
			buf = action.buf
		} else {
			buf = nil
		}
		if action.echo != "" {
			_, _ = k.out.WriteString(action.echo)
		}
		if action.cmd != nil {
			select {
			case commands <- *action.cmd:
			case <-ctx.Done():
				return ctx.Err()
			}
			if action.cmd.Kind == CommandQuit {
				return nil
			}
		}
	}
}
