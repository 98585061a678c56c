package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

const (
	// DefaultSampleRate matches the pcm16 format the realtime API expects.
	DefaultSampleRate = 24000
	// DefaultChannels is mono capture and playback.
	DefaultChannels = 1
	// DefaultChunkFrames is the capture callback size in frames.
	DefaultChunkFrames = 1024

	playbackBufferMs  = 50
	ringBufferSeconds = 30
)

// Handler owns the microphone and the speaker. Capture runs through
// PortAudio in two modes, push-to-talk recording that accumulates PCM until
// stopped and continuous streaming that hands each chunk to a callback.
// Playback feeds a drop-oldest ring buffer into a single oto player.
type Handler struct {
	logger shared.LoggerAdapter

	sampleRate  int
	channels    int
	chunkFrames int

	mu          sync.Mutex
	inputStream *portaudio.Stream
	recording   bool
	streaming   bool
	captured    []byte

	playMu  sync.Mutex
	otoCtx  *oto.Context
	player  *oto.Player
	ring    *Buffer
	playing bool

	closed bool
}

// NewHandler initializes PortAudio and returns a handler at the default
// 24kHz mono PCM16 format. Callers must Close it to release the audio host.
func NewHandler(logger shared.LoggerAdapter) (*Handler, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing PortAudio: %w", err)
	}
	return &Handler{
		logger:      logger,
		sampleRate:  DefaultSampleRate,
		channels:    DefaultChannels,
		chunkFrames: DefaultChunkFrames,
	}, nil
}

// SampleRate reports the capture and playback rate in Hz.
func (h *Handler) SampleRate() int { return h.sampleRate }

// Channels reports the channel count.
func (h *Handler) Channels() int { return h.channels }

// StartRecording opens the default input device and accumulates PCM16 until
// StopRecording is called. Push-to-talk mode.
func (h *Handler) StartRecording() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recording {
		return shared.ErrRecorderRunning
	}
	if h.streaming {
		return shared.ErrStreamerRunning
	}
	h.captured = h.captured[:0]
	stream, err := portaudio.OpenDefaultStream(
		h.channels, 0, float64(h.sampleRate), h.chunkFrames,
		func(in []int16) {
			h.mu.Lock()
			if h.recording {
				h.captured = append(h.captured, Int16ToBytes(in)...)
			}
			h.mu.Unlock()
		},
	)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("starting input stream: %w", err)
	}
	h.inputStream = stream
	h.recording = true
	h.logger.Debug("recording started",
		zap.Int("sampleRate", h.sampleRate),
		zap.Int("chunkFrames", h.chunkFrames),
	)
	return nil
}

// StopRecording stops capture and returns everything recorded since
// StartRecording. Returns nil audio if nothing was captured.
func (h *Handler) StopRecording() ([]byte, error) {
	h.mu.Lock()
	if !h.recording {
		h.mu.Unlock()
		return nil, nil
	}
	h.recording = false
	stream := h.inputStream
	h.inputStream = nil
	h.mu.Unlock()

	if err := stream.Stop(); err != nil {
		h.logger.Warn("stopping input stream", zap.Error(err))
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("closing input stream: %w", err)
	}

	h.mu.Lock()
	pcm := make([]byte, len(h.captured))
	copy(pcm, h.captured)
	h.captured = h.captured[:0]
	h.mu.Unlock()

	h.logger.Debug("recording stopped",
		zap.Int("bytes", len(pcm)),
		zap.Duration("duration", Duration(len(pcm), h.sampleRate, h.channels)),
	)
	return pcm, nil
}

// StartStreaming opens the default input device and calls fn with each
// PCM16 chunk as it arrives. The callback runs on the audio thread, so it
// must hand work off quickly.
func (h *Handler) StartStreaming(fn func(pcm []byte)) error {
	if fn == nil {
		return fmt.Errorf("nil streaming callback")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streaming {
		return shared.ErrStreamerRunning
	}
	if h.recording {
		return shared.ErrRecorderRunning
	}
	stream, err := portaudio.OpenDefaultStream(
		h.channels, 0, float64(h.sampleRate), h.chunkFrames,
		func(in []int16) {
			fn(Int16ToBytes(in))
		},
	)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("starting input stream: %w", err)
	}
	h.inputStream = stream
	h.streaming = true
	h.logger.Debug("streaming started", zap.Int("sampleRate", h.sampleRate))
	return nil
}

// StopStreaming stops continuous capture.
func (h *Handler) StopStreaming() error {
	h.mu.Lock()
	if !h.streaming {
		h.mu.Unlock()
		return nil
	}
	h.streaming = false
	stream := h.inputStream
	h.inputStream = nil
	h.mu.Unlock()

	if err := stream.Stop(); err != nil {
		h.logger.Warn("stopping input stream", zap.Error(err))
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("closing input stream: %w", err)
	}
	h.logger.Debug("streaming stopped")
	return nil
}

// Play queues PCM16 for playback. The player and its oto context are created
// lazily on the first call; oto allows one context per process.
func (h *Handler) Play(pcm []byte) error {
	h.playMu.Lock()
	defer h.playMu.Unlock()
	if h.closed {
		return fmt.Errorf("audio handler closed")
	}
	if h.otoCtx == nil {
		otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   h.sampleRate,
			ChannelCount: h.channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   playbackBufferMs * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("creating oto context: %w", err)
		}
		<-ready
		h.otoCtx = otoCtx
		h.ring = NewBuffer(ringBufferSeconds * h.sampleRate * h.channels * 2)
	}
	dropped := h.ring.Write(pcm)
	if dropped > 0 {
		h.logger.Warn("playback buffer dropped data", zap.Int("droppedBytes", dropped))
	}
	if !h.playing {
		h.player = h.otoCtx.NewPlayer(h.ring)
		h.player.Play()
		h.playing = true
	}
	return nil
}

// StopPlayback discards queued audio so the speaker goes quiet as soon as
// the device buffer drains. Used on interruption.
func (h *Handler) StopPlayback() {
	h.playMu.Lock()
	defer h.playMu.Unlock()
	if h.ring != nil {
		h.ring.Flush()
	}
}

// PendingPlayback reports how much queued audio remains, as a duration.
func (h *Handler) PendingPlayback() time.Duration {
	h.playMu.Lock()
	defer h.playMu.Unlock()
	if h.ring == nil {
		return 0
	}
	return Duration(h.ring.Len(), h.sampleRate, h.channels)
}

// Close stops any capture, shuts down playback, and terminates PortAudio.
func (h *Handler) Close() error {
	_, _ = h.StopRecording()
	_ = h.StopStreaming()

	h.playMu.Lock()
	h.closed = true
	if h.ring != nil {
		_ = h.ring.Close()
	}
	if h.player != nil {
		_ = h.player.Close()
		h.player = nil
	}
	h.playMu.Unlock()

	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminating PortAudio: %w", err)
	}
	return nil
}
