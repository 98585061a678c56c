package realtime

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/bt-bridge/openai-realtime-cli/tools"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records written frames and serves queued reads.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	reads   chan []byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 16)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.reads
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, data, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) writtenTypes(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, data := range f.written {
		var raw map[string]any
		require.NoError(t, sonic.Unmarshal(data, &raw))
		typ, _ := raw["type"].(string)
		types = append(types, typ)
	}
	return types
}

func newTestClient(t *testing.T, mode TurnDetectionMode) (*Client, *fakeConn) {
	t.Helper()
	c, err := NewClient(context.Background(), shared.NewNopLogger(), "sk-test", "", mode, "")
	require.NoError(t, err)
	conn := newFakeConn()
	c.mu.Lock()
	c.conn = conn
	c.running = true
	c.mu.Unlock()
	return c, conn
}

func TestNewClient(t *testing.T) {
	t.Run("requires logger", func(t *testing.T) {
		_, err := NewClient(context.Background(), nil, "sk", "", TurnDetectionManual, "")
		assert.ErrorIs(t, err, shared.ErrNoLogger)
	})

	t.Run("requires api key", func(t *testing.T) {
		_, err := NewClient(context.Background(), shared.NewNopLogger(), "", "", TurnDetectionManual, "")
		assert.ErrorIs(t, err, shared.ErrNoAPIKey)
	})

	t.Run("builds websocket url with model", func(t *testing.T) {
		c, err := NewClient(context.Background(), shared.NewNopLogger(), "sk", "my-model", TurnDetectionManual, "https://example.com/v1/realtime")
		require.NoError(t, err)
		assert.Equal(t, "wss", c.wsURL.Scheme)
		assert.Equal(t, "my-model", c.wsURL.Query().Get("model"))
	})

	t.Run("rejects odd schemes", func(t *testing.T) {
		_, err := NewClient(context.Background(), shared.NewNopLogger(), "sk", "", TurnDetectionManual, "ftp://example.com")
		assert.Error(t, err)
	})
}

func TestRegisterHandlers(t *testing.T) {
	c, err := NewClient(context.Background(), shared.NewNopLogger(), "sk", "", TurnDetectionManual, "")
	require.NoError(t, err)

	require.NoError(t, c.RegisterTextHandler(func(string) {}))
	assert.ErrorIs(t, c.RegisterTextHandler(func(string) {}), shared.ErrHandlerAlreadySet)

	require.NoError(t, c.RegisterExtraHandler(ServerEventTypeResponseDone, func(*ServerEvent) {}))
	assert.ErrorIs(t,
		c.RegisterExtraHandler(ServerEventTypeResponseDone, func(*ServerEvent) {}),
		shared.ErrHandlerAlreadySet,
	)

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
	assert.ErrorIs(t, c.RegisterAudioHandler(func([]byte) {}), shared.ErrSessionAlreadyRunning)
	assert.ErrorIs(t, c.SetConfig(&SessionConfig{}), shared.ErrSessionAlreadyRunning)
}

func TestSendOperations(t *testing.T) {
	t.Run("send text creates item and response", func(t *testing.T) {
		c, conn := newTestClient(t, TurnDetectionManual)
		require.NoError(t, c.SendText("hello"))
		assert.Equal(t, []string{"conversation.item.create", "response.create"}, conn.writtenTypes(t))
	})

	t.Run("send audio manual mode commits and responds", func(t *testing.T) {
		c, conn := newTestClient(t, TurnDetectionManual)
		require.NoError(t, c.SendAudio([]byte{1, 2, 3, 4}))
		assert.Equal(t,
			[]string{"input_audio_buffer.append", "input_audio_buffer.commit", "response.create"},
			conn.writtenTypes(t),
		)
	})

	t.Run("send audio server vad commits without response", func(t *testing.T) {
		c, conn := newTestClient(t, TurnDetectionServerVAD)
		require.NoError(t, c.SendAudio([]byte{1, 2, 3, 4}))
		assert.Equal(t,
			[]string{"input_audio_buffer.append", "input_audio_buffer.commit"},
			conn.writtenTypes(t),
		)
	})

	t.Run("stream audio appends only", func(t *testing.T) {
		c, conn := newTestClient(t, TurnDetectionServerVAD)
		require.NoError(t, c.StreamAudio([]byte{1, 2}))
		require.NoError(t, c.StreamAudio([]byte{3, 4}))
		assert.Equal(t,
			[]string{"input_audio_buffer.append", "input_audio_buffer.append"},
			conn.writtenTypes(t),
		)
	})

	t.Run("function result creates output item and response", func(t *testing.T) {
		c, conn := newTestClient(t, TurnDetectionManual)
		require.NoError(t, c.SendFunctionResult("call_1", "42"))
		assert.Equal(t, []string{"conversation.item.create", "response.create"}, conn.writtenTypes(t))
	})

	t.Run("send without connection fails", func(t *testing.T) {
		c, err := NewClient(context.Background(), shared.NewNopLogger(), "sk", "", TurnDetectionManual, "")
		require.NoError(t, err)
		assert.ErrorIs(t, c.SendText("hi"), shared.ErrClientNotInitialized)
	})
}

func serverEvent(t *testing.T, data string) *ServerEvent {
	t.Helper()
	ev := new(ServerEvent)
	require.NoError(t, ev.UnmarshalJSON([]byte(data)))
	return ev
}

func TestHandleEventStateTracking(t *testing.T) {
	c, _ := newTestClient(t, TurnDetectionServerVAD)

	c.handleEvent(serverEvent(t, `{"event_id":"1","type":"response.created","response":{"id":"resp_1"}}`))
	assert.True(t, c.Responding())
	c.mu.Lock()
	assert.Equal(t, "resp_1", c.currentResponseId)
	c.mu.Unlock()

	c.handleEvent(serverEvent(t, `{"event_id":"2","type":"response.output_item.added","response_id":"resp_1","output_index":0,"item":{"id":"item_1"}}`))
	c.mu.Lock()
	assert.Equal(t, "item_1", c.currentItemId)
	c.mu.Unlock()

	c.handleEvent(serverEvent(t, `{"event_id":"3","type":"response.done","response":{"id":"resp_1"}}`))
	assert.False(t, c.Responding())
	c.mu.Lock()
	assert.Empty(t, c.currentResponseId)
	assert.Empty(t, c.currentItemId)
	c.mu.Unlock()
}

func TestHandleEventDispatch(t *testing.T) {
	c, _ := newTestClient(t, TurnDetectionServerVAD)

	var textDeltas, outputTranscripts []string
	var inputTranscripts []string
	var audio [][]byte
	c.onTextDelta = func(d string) { textDeltas = append(textDeltas, d) }
	c.onOutputTranscript = func(d string) { outputTranscripts = append(outputTranscripts, d) }
	c.onInputTranscript = func(s string) { inputTranscripts = append(inputTranscripts, s) }
	c.onAudioDelta = func(pcm []byte) { audio = append(audio, pcm) }

	c.handleEvent(serverEvent(t, `{"event_id":"1","type":"response.text.delta","response_id":"r","item_id":"i","output_index":0,"content_index":0,"delta":"he"}`))
	c.handleEvent(serverEvent(t, `{"event_id":"2","type":"response.audio_transcript.delta","response_id":"r","item_id":"i","output_index":0,"content_index":0,"delta":"llo"}`))
	c.handleEvent(serverEvent(t, `{"event_id":"3","type":"conversation.item.input_audio_transcription.completed","item_id":"i","content_index":0,"transcript":"hi there"}`))

	b64 := base64.StdEncoding.EncodeToString([]byte{9, 9})
	c.handleEvent(serverEvent(t, `{"event_id":"4","type":"response.audio.delta","response_id":"r","item_id":"i","output_index":0,"content_index":0,"delta":"`+b64+`"}`))

	assert.Equal(t, []string{"he"}, textDeltas)
	assert.Equal(t, []string{"llo"}, outputTranscripts)
	assert.Equal(t, []string{"hi there"}, inputTranscripts)
	require.Len(t, audio, 1)
	assert.Equal(t, []byte{9, 9}, audio[0])
}

func TestSpeechStartedInterruptsResponse(t *testing.T) {
	c, conn := newTestClient(t, TurnDetectionServerVAD)

	interrupted := false
	c.onInterrupt = func() { interrupted = true }

	c.handleEvent(serverEvent(t, `{"event_id":"1","type":"response.created","response":{"id":"resp_1"}}`))
	c.handleEvent(serverEvent(t, `{"event_id":"2","type":"response.output_item.added","response_id":"resp_1","output_index":0,"item":{"id":"item_1"}}`))
	c.handleEvent(serverEvent(t, `{"event_id":"3","type":"input_audio_buffer.speech_started","audio_start_ms":100,"item_id":"item_2"}`))

	assert.True(t, interrupted)
	assert.False(t, c.Responding())
	assert.Equal(t, []string{"response.cancel", "conversation.item.truncate"}, conn.writtenTypes(t))

	// The truncate frame must not carry a cut point: audio_end_ms 0 would
	// erase the item's audio instead of clamping to what was generated.
	conn.mu.Lock()
	defer conn.mu.Unlock()
	var raw map[string]any
	require.NoError(t, sonic.Unmarshal(conn.written[1], &raw))
	assert.Equal(t, "item_1", raw["item_id"])
	assert.NotContains(t, raw, "audio_end_ms")
	assert.NotContains(t, raw, "content_index")
}

func TestHandleInterruptionWhenIdle(t *testing.T) {
	c, conn := newTestClient(t, TurnDetectionServerVAD)
	require.NoError(t, c.HandleInterruption())
	assert.Empty(t, conn.writtenTypes(t))
}

func TestExtraHandlerRunsAfterBuiltin(t *testing.T) {
	c, _ := newTestClient(t, TurnDetectionManual)

	var sawResponding bool
	c.extra[ServerEventTypeResponseCreated] = func(ev *ServerEvent) {
		sawResponding = c.Responding()
	}
	c.handleEvent(serverEvent(t, `{"event_id":"1","type":"response.created","response":{"id":"resp_1"}}`))
	assert.True(t, sawResponding)
}

func TestToolCallDispatch(t *testing.T) {
	registry := tools.NewRegistry()
	echo, err := tools.NewFuncTool(
		"echo",
		"Echo the input back",
		&tools.JSONSchema{
			Type:       "object",
			Properties: map[string]any{"text": map[string]any{"type": "string"}},
			Required:   []string{"text"},
		},
		func(_ context.Context, params map[string]any) (string, error) {
			text, _ := params["text"].(string)
			return "echo: " + text, nil
		},
	)
	require.NoError(t, err)
	require.NoError(t, registry.Register(echo))

	c, conn := newTestClient(t, TurnDetectionManual)
	c.registry = registry

	c.handleEvent(serverEvent(t,
		`{"event_id":"1","type":"response.function_call_arguments.done","response_id":"r","item_id":"i","output_index":0,"call_id":"call_1","name":"echo","arguments":"{\"text\":\"hi\"}"}`))

	// The dispatch runs in a goroutine; wait for the result frames.
	require.Eventually(t, func() bool {
		return len(conn.writtenTypes(t)) == 2
	}, time.Second, 10*time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	var raw map[string]any
	require.NoError(t, sonic.Unmarshal(conn.written[0], &raw))
	item, ok := raw["item"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function_call_output", item["type"])
	assert.Equal(t, "call_1", item["call_id"])
	assert.Equal(t, "echo: hi", item["output"])
}

func TestReadLoopDeliversEvents(t *testing.T) {
	c, conn := newTestClient(t, TurnDetectionServerVAD)

	var deltas []string
	var mu sync.Mutex
	c.onTextDelta = func(d string) {
		mu.Lock()
		deltas = append(deltas, d)
		mu.Unlock()
	}

	go c.readLoop()
	conn.reads <- []byte(`{"event_id":"1","type":"response.text.delta","response_id":"r","item_id":"i","output_index":0,"content_index":0,"delta":"a"}`)
	conn.reads <- []byte(`{"event_id":"2","type":"some.future.event"}`) // skipped
	conn.reads <- []byte(`{"event_id":"3","type":"response.text.delta","response_id":"r","item_id":"i","output_index":0,"content_index":0,"delta":"b"}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(deltas) == 2
	}, time.Second, 10*time.Millisecond)
	close(conn.reads)
}

func TestClose(t *testing.T) {
	c, conn := newTestClient(t, TurnDetectionManual)
	require.NoError(t, c.Close())
	assert.True(t, conn.closed)
	select {
	case <-c.Done():
	default:
		t.Fatal("context not cancelled after Close")
	}
	assert.ErrorIs(t, c.SendText("hi"), context.Canceled)
}
