package shared

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

type StringWriteCloser interface {
	io.Closer
	io.StringWriter
}

type writeCloser struct {
	w io.WriteCloser
}

// NewWriteCloser adapts an io.WriteCloser (e.g. os.Stdout) into a printer hook.
func NewWriteCloser(w io.WriteCloser) StringWriteCloser {
	if w == nil {
		return nil
	}
	return &writeCloser{w: w}
}

func (wc *writeCloser) WriteString(s string) (int, error) {
	return wc.w.Write([]byte(s))
}

func (wc *writeCloser) Close() error {
	return wc.w.Close()
}

// Printer fans user-facing output out to one or more hooks, indenting each
// line by the given level. It is the only thing that writes to stdout; the
// logger owns everything else.
type Printer struct {
	mu     sync.Mutex
	indStr string
	hooks  []StringWriteCloser
}

func NewPrinter(indentString string, hooks ...StringWriteCloser) (*Printer, error) {
	if len(hooks) == 0 {
		return nil, errors.New("no hook provided")
	}
	for _, hook := range hooks {
		if hook == nil {
			return nil, errors.New("a nil pointed hook is given")
		}
	}
	return &Printer{indStr: indentString, hooks: hooks}, nil
}

func (p *Printer) Write(s string, ind int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(s, ind)
}

func (p *Printer) Writeln(s string, ind int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.write(s, ind); err != nil {
		return err
	}
	return p.emit("\n")
}

func (p *Printer) write(s string, ind int) error {
	indent := strings.Repeat(p.indStr, ind)
	first := true
	for line := range strings.SplitSeq(s, "\n") {
		if first {
			first = false
			line = indent + line
		} else {
			line = "\n" + indent + line
		}
		if err := p.emit(line); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) emit(s string) error {
	for _, hook := range p.hooks {
		if _, err := hook.WriteString(s); err != nil {
			return fmt.Errorf("on writing to hook: %w", err)
		}
	}
	return nil
}

func (p *Printer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, hook := range p.hooks {
		if err := hook.Close(); err != nil {
			return fmt.Errorf("on closing hook: %w", err)
		}
	}
	return nil
}
