// Package console is the terminal front end of the chat client.  It
// reads what the user types and renders inbound messages, status
// lines and validation warnings.
//
// When stdin is a terminal the console switches it to raw mode and
// uses golang.org/x/term's line editor, so inbound messages are drawn
// above the prompt instead of through the line being typed.  Otherwise
// it falls back to plain line-oriented I/O, which is also what tests
// use.
package console

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultPrompt is shown while waiting for chat input.
const DefaultPrompt = "> "

// Console is a line-oriented user interface.  Output methods are safe
// to call from the receiver goroutine while ReadLine blocks.
type Console struct {
	term    *term.Terminal
	restore func()

	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

// New returns a plain console reading lines from in and writing to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Open returns an interactive console when stdin is a terminal and a
// plain one otherwise.  Call Close to restore the terminal.
func Open(stdin *os.File, stdout io.Writer) (*Console, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return New(stdin, stdout), nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	rw := struct {
		io.Reader
		io.Writer
	}{stdin, stdout}

	return &Console{
		term:    term.NewTerminal(rw, DefaultPrompt),
		restore: func() { term.Restore(fd, state) }, //nolint:errcheck
	}, nil
}

// Interactive reports whether the console drives a raw terminal.
func (c *Console) Interactive() bool { return c.term != nil }

// Message renders one inbound display unit on its own line.
func (c *Console) Message(text string) { c.writeLine(text) }

// Status renders a connection status line.
func (c *Console) Status(line string) { c.writeLine(line) }

// Invalid renders a validation warning.
func (c *Console) Invalid(err error) { c.writeLine("warning: " + err.Error()) }

// ReadLine blocks for the next line of user input, without its line
// terminator.  It returns io.EOF when input ends (Ctrl-D, Ctrl-C in
// raw mode, or end of a piped stdin).
func (c *Console) ReadLine() (string, error) {
	if c.term != nil {
		return c.term.ReadLine()
	}
	line, err := c.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

// Prompt shows label and returns the next line of input.
func (c *Console) Prompt(label string) (string, error) {
	if c.term != nil {
		c.term.SetPrompt(label)
		defer c.term.SetPrompt(DefaultPrompt)
		return c.term.ReadLine()
	}
	c.mu.Lock()
	io.WriteString(c.out, label) //nolint:errcheck
	c.mu.Unlock()
	return c.ReadLine()
}

// Confirm asks a yes/no question; anything but "y" or "yes" is no.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.Prompt(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Close restores the terminal state.  Safe to call on plain consoles.
func (c *Console) Close() {
	if c.restore != nil {
		c.restore()
		c.restore = nil
	}
}

func (c *Console) writeLine(s string) {
	if c.term != nil {
		c.term.Write([]byte(s + "\n")) //nolint:errcheck
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s+"\n") //nolint:errcheck
}
