package shared

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringHook struct {
	strings.Builder
	closed bool
}

func (h *stringHook) Close() error {
	h.closed = true
	return nil
}

func TestNewPrinter(t *testing.T) {
	_, err := NewPrinter("  ")
	assert.Error(t, err, "at least one hook is required")

	_, err = NewPrinter("  ", nil)
	assert.Error(t, err)
}

func TestPrinterWrite(t *testing.T) {
	hook := new(stringHook)
	p, err := NewPrinter("  ", hook)
	require.NoError(t, err)

	require.NoError(t, p.Write("hello", 0))
	assert.Equal(t, "hello", hook.String())
}

func TestPrinterWriteIndentsEveryLine(t *testing.T) {
	hook := new(stringHook)
	p, err := NewPrinter("> ", hook)
	require.NoError(t, err)

	require.NoError(t, p.Write("a\nb", 2))
	assert.Equal(t, "> > a\n> > b", hook.String())
}

func TestPrinterWriteln(t *testing.T) {
	hook := new(stringHook)
	p, err := NewPrinter("  ", hook)
	require.NoError(t, err)

	require.NoError(t, p.Writeln("line", 1))
	assert.Equal(t, "  line\n", hook.String())
}

func TestPrinterFansOut(t *testing.T) {
	first, second := new(stringHook), new(stringHook)
	p, err := NewPrinter("", first, second)
	require.NoError(t, err)

	require.NoError(t, p.Write("x", 0))
	assert.Equal(t, "x", first.String())
	assert.Equal(t, "x", second.String())
}

func TestPrinterClose(t *testing.T) {
	hook := new(stringHook)
	p, err := NewPrinter("", hook)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, hook.closed)
}
