// Package audio owns microphone capture and speaker playback for the
// realtime CLIs: PCM16 mono capture through PortAudio, buffered playback
// through oto, and the small format helpers both sides need.
package audio

import (
	"io"
	"sync"
)

// Buffer is a bounded FIFO of PCM bytes between the event loop and the
// playback device. Writes past capacity drop the oldest audio, reads block
// until data arrives or the buffer is closed.
type Buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buffer []byte
	size   int
	cap    int
	closed bool
}

func NewBuffer(fixedCap int) *Buffer {
	b := &Buffer{
		buffer: make([]byte, 0, fixedCap),
		cap:    fixedCap,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write appends data, dropping the oldest bytes if capacity is exceeded.
// Returns how many bytes were dropped.
func (b *Buffer) Write(data []byte) (dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return len(data)
	}
	if b.size+len(data) > b.cap {
		drop := b.size + len(data) - b.cap
		if drop > b.size {
			drop = b.size
		}
		b.buffer = b.buffer[drop:]
		b.size -= drop
		dropped = drop
	}
	b.buffer = append(b.buffer, data...)
	b.size += len(data)
	b.cond.Signal()
	return dropped
}

// Read blocks until data is available or the buffer is closed.
func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.size == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.size == 0 && b.closed {
		return 0, io.EOF
	}
	n := copy(p, b.buffer)
	b.buffer = b.buffer[n:]
	b.size -= n
	return n, nil
}

// Flush discards everything queued. The interruption path uses this to
// silence playback immediately.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = b.buffer[:0]
	b.size = 0
}

// Len reports the queued byte count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Close wakes blocked readers; subsequent reads drain and then return EOF.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}
