package audio

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferWriteRead(t *testing.T) {
	b := NewBuffer(16)
	dropped := b.Write([]byte{1, 2, 3, 4})
	assert.Zero(t, dropped)
	assert.Equal(t, 4, b.Len())

	p := make([]byte, 8)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, p[:n])
	assert.Zero(t, b.Len())
}

func TestBufferDropsOldest(t *testing.T) {
	b := NewBuffer(4)
	assert.Zero(t, b.Write([]byte{1, 2, 3, 4}))
	assert.Equal(t, 2, b.Write([]byte{5, 6}))

	p := make([]byte, 8)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5, 6}, p[:n])
}

func TestBufferWriteLargerThanCapacity(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]byte{1, 2})
	// Everything queued is dropped; the oversized chunk is kept whole.
	assert.Equal(t, 2, b.Write([]byte{9, 9, 9, 9, 9, 9}))

	p := make([]byte, 16)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestBufferReadBlocksUntilWrite(t *testing.T) {
	b := NewBuffer(16)
	got := make(chan []byte, 1)
	go func() {
		p := make([]byte, 4)
		n, err := b.Read(p)
		if err == nil {
			got <- p[:n]
		}
	}()

	time.Sleep(20 * time.Millisecond)
	b.Write([]byte{7, 8})

	select {
	case data := <-got:
		assert.Equal(t, []byte{7, 8}, data)
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after write")
	}
}

func TestBufferFlush(t *testing.T) {
	b := NewBuffer(16)
	b.Write([]byte{1, 2, 3})
	b.Flush()
	assert.Zero(t, b.Len())
}

func TestBufferClose(t *testing.T) {
	b := NewBuffer(16)
	b.Write([]byte{1, 2})
	require.NoError(t, b.Close())

	// Drains what is queued, then EOF.
	p := make([]byte, 4)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = b.Read(p)
	assert.ErrorIs(t, err, io.EOF)

	// Writes after close are dropped wholesale.
	assert.Equal(t, 3, b.Write([]byte{1, 2, 3}))
}

func TestBufferCloseUnblocksReader(t *testing.T) {
	b := NewBuffer(16)
	done := make(chan error, 1)
	go func() {
		p := make([]byte, 4)
		_, err := b.Read(p)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, b.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after close")
	}
}
