package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/bt-bridge/openai-realtime-cli/tools"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Defaults for a session when the caller does not provide a config.
const (
	DefaultBaseURL      = "wss://api.openai.com/v1/realtime"
	DefaultModel        = "gpt-4o-realtime-preview-2024-10-01"
	DefaultVoice        = "alloy"
	DefaultInstructions = "You are a helpful assistant"

	dialTimeout = 15 * time.Second
)

type TextHandler func(delta string)
type AudioHandler func(pcm []byte)
type TranscriptHandler func(transcript string)
type InterruptHandler func()
type EventHandler func(event *ServerEvent)

// wsConn is the slice of *websocket.Conn the client uses. Tests substitute
// an in-memory implementation.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client speaks the realtime API over a single WebSocket. Handlers are
// registered before Start; all sends are serialised on the connection.
type Client struct {
	logger shared.LoggerAdapter
	apiKey string
	model  string
	mode   TurnDetectionMode
	wsURL  *url.URL

	cfg      *SessionConfig
	registry *tools.Registry

	onTextDelta        TextHandler
	onAudioDelta       AudioHandler
	onInputTranscript  TranscriptHandler
	onOutputTranscript TranscriptHandler
	onInterrupt        InterruptHandler
	extra              map[ServerEventType]EventHandler

	mu                sync.Mutex
	conn              wsConn
	running           bool
	responding        bool
	currentResponseId string
	currentItemId     string

	sendMu sync.Mutex

	ctx    context.Context
	cancel context.CancelCauseFunc
}

func NewClient(ctx context.Context, logger shared.LoggerAdapter, apiKey, model string, mode TurnDetectionMode, baseURL string) (*Client, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if apiKey == "" {
		return nil, shared.ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	wsURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	switch wsURL.Scheme {
	case "ws", "wss":
	case "http":
		wsURL.Scheme = "ws"
	case "https":
		wsURL.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported base URL scheme: %s", wsURL.Scheme)
	}
	q := wsURL.Query()
	q.Set("model", model)
	wsURL.RawQuery = q.Encode()

	ctx, cancel := context.WithCancelCause(ctx)
	return &Client{
		logger: logger,
		apiKey: apiKey,
		model:  model,
		mode:   mode,
		wsURL:  wsURL,
		extra:  make(map[ServerEventType]EventHandler),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (c *Client) respectCtx() error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}
	return nil
}

// Done is closed when the session ends, whatever the reason.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Client) Mode() TurnDetectionMode {
	return c.mode
}

// SetConfig overrides the session config sent on Start.
func (c *Client) SetConfig(cfg *SessionConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	c.cfg = cfg
	return nil
}

// SetRegistry attaches the tool registry used for function-call dispatch.
func (c *Client) SetRegistry(registry *tools.Registry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	c.registry = registry
	return nil
}

func (c *Client) RegisterTextHandler(h TextHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if c.onTextDelta != nil {
		return shared.ErrHandlerAlreadySet
	}
	c.onTextDelta = h
	return nil
}

func (c *Client) RegisterAudioHandler(h AudioHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if c.onAudioDelta != nil {
		return shared.ErrHandlerAlreadySet
	}
	c.onAudioDelta = h
	return nil
}

func (c *Client) RegisterInputTranscriptHandler(h TranscriptHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if c.onInputTranscript != nil {
		return shared.ErrHandlerAlreadySet
	}
	c.onInputTranscript = h
	return nil
}

func (c *Client) RegisterOutputTranscriptHandler(h TranscriptHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if c.onOutputTranscript != nil {
		return shared.ErrHandlerAlreadySet
	}
	c.onOutputTranscript = h
	return nil
}

func (c *Client) RegisterInterruptHandler(h InterruptHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if c.onInterrupt != nil {
		return shared.ErrHandlerAlreadySet
	}
	c.onInterrupt = h
	return nil
}

// RegisterExtraHandler attaches a handler for a raw server event type. Extra
// handlers run after the built-in dispatch for the same event.
func (c *Client) RegisterExtraHandler(t ServerEventType, h EventHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return shared.ErrSessionAlreadyRunning
	}
	if _, exists := c.extra[t]; exists {
		return shared.ErrHandlerAlreadySet
	}
	c.extra[t] = h
	return nil
}

// Start dials the realtime endpoint, pushes the initial session.update and
// spawns the read loop.
func (c *Client) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return shared.ErrSessionAlreadyRunning
	}
	if err := c.respectCtx(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("respecting client context: %w", err)
	}
	if c.cfg == nil {
		c.cfg = DefaultSessionConfig(c.mode, DefaultInstructions, DefaultVoice)
	}
	if c.registry != nil && len(c.cfg.Tools) == 0 {
		c.cfg.Tools = c.registry.Definitions()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(c.ctx, c.wsURL.String(), header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("dialing realtime endpoint (status %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("dialing realtime endpoint: %w", err)
		}
		c.mu.Unlock()
		c.cancel(err)
		return err
	}
	c.conn = conn
	c.running = true
	c.mu.Unlock()
	c.logger.Info(
		"connected to realtime endpoint",
		zap.String("model", c.model),
		zap.String("mode", c.mode.String()),
	)

	if err := c.sendEvent(NewClientEvent(
		ClientEventTypeSessionUpdate,
		&ClientEventParamSessionUpdate{Session: c.cfg},
	)); err != nil {
		c.cancel(err)
		return fmt.Errorf("sending initial session update: %w", err)
	}

	go c.readLoop()
	return nil
}

// Close tears the connection down and cancels the session context.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("closing websocket connection failed", err)
		}
		c.conn = nil
	}
	c.cancel(errors.New("client closed"))
	c.running = false
	return nil
}

func (c *Client) sendEvent(ev *ClientEvent) error {
	if err := c.respectCtx(); err != nil {
		return fmt.Errorf("respecting client context: %w", err)
	}
	data, err := sonic.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", ev.Type, err)
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return shared.ErrClientNotInitialized
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Type, err)
	}
	return nil
}

// UpdateSession pushes a new session config mid-conversation.
func (c *Client) UpdateSession(cfg *SessionConfig) error {
	if cfg == nil {
		return shared.ErrNoConfig
	}
	return c.sendEvent(NewClientEvent(
		ClientEventTypeSessionUpdate,
		&ClientEventParamSessionUpdate{Session: cfg},
	))
}

// SendText submits a user text message and asks for a response.
func (c *Client) SendText(text string) error {
	if err := c.sendEvent(NewClientEvent(
		ClientEventTypeConversationItemCreate,
		NewUserTextItem(text),
	)); err != nil {
		return err
	}
	return c.CreateResponse()
}

// SendAudio appends a complete utterance to the input buffer and commits
// it. In manual mode a response is requested explicitly; with server VAD
// the API decides on its own.
func (c *Client) SendAudio(pcm []byte) error {
	if err := c.sendEvent(NewClientEvent(
		ClientEventTypeInputAudioBufferAppend,
		NewInputAudioBufferAppend(pcm),
	)); err != nil {
		return err
	}
	if err := c.sendEvent(NewClientEvent(
		ClientEventTypeInputAudioBufferCommit,
		new(ClientEventParamEmpty),
	)); err != nil {
		return err
	}
	if c.mode == TurnDetectionManual {
		return c.CreateResponse()
	}
	return nil
}

// StreamAudio appends one raw PCM16 chunk without committing. Used with
// server VAD where turn boundaries are the API's call.
func (c *Client) StreamAudio(chunk []byte) error {
	return c.sendEvent(NewClientEvent(
		ClientEventTypeInputAudioBufferAppend,
		NewInputAudioBufferAppend(chunk),
	))
}

// CreateResponse asks the API to respond with text and audio.
func (c *Client) CreateResponse() error {
	return c.sendEvent(NewClientEvent(
		ClientEventTypeResponseCreate,
		NewResponseCreate(nil),
	))
}

// SendFunctionResult returns a tool result to the conversation. Function
// call outputs always need an explicit follow-up response.
func (c *Client) SendFunctionResult(callId, output string) error {
	if err := c.sendEvent(NewClientEvent(
		ClientEventTypeConversationItemCreate,
		NewFunctionCallOutputItem(callId, output),
	)); err != nil {
		return err
	}
	return c.CreateResponse()
}

// CancelResponse cancels the in-flight response.
func (c *Client) CancelResponse() error {
	return c.sendEvent(NewClientEvent(
		ClientEventTypeResponseCancel,
		new(ClientEventParamEmpty),
	))
}

// TruncateConversationItem cuts the current assistant item down to what was
// actually played back.
func (c *Client) TruncateConversationItem() error {
	c.mu.Lock()
	itemId := c.currentItemId
	c.mu.Unlock()
	if itemId == "" {
		return nil
	}
	return c.sendEvent(NewClientEvent(
		ClientEventTypeConversationItemTruncate,
		&ClientEventParamConversationItemTruncate{ItemId: itemId},
	))
}

// HandleInterruption cancels and truncates the in-flight response. No-op
// when nothing is being generated.
func (c *Client) HandleInterruption() error {
	c.mu.Lock()
	if !c.responding {
		c.mu.Unlock()
		return nil
	}
	responseId := c.currentResponseId
	itemId := c.currentItemId
	c.responding = false
	c.currentResponseId = ""
	c.currentItemId = ""
	c.mu.Unlock()

	c.logger.Info(
		"handling interruption",
		zap.String("response_id", responseId),
		zap.String("item_id", itemId),
	)
	if responseId != "" {
		if err := c.CancelResponse(); err != nil {
			return fmt.Errorf("canceling response: %w", err)
		}
	}
	if itemId != "" {
		if err := c.sendEvent(NewClientEvent(
			ClientEventTypeConversationItemTruncate,
			&ClientEventParamConversationItemTruncate{ItemId: itemId},
		)); err != nil {
			return fmt.Errorf("truncating conversation item: %w", err)
		}
	}
	return nil
}

// Responding reports whether a response is currently being generated.
func (c *Client) Responding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.responding
}

func (c *Client) readLoop() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	for {
		if err := c.respectCtx(); err != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.respectCtx() == nil {
				c.logger.Error("reading from websocket", err)
				c.cancel(fmt.Errorf("reading from websocket: %w", err))
			}
			return
		}
		event := new(ServerEvent)
		if err := event.UnmarshalJSON(data); err != nil {
			if errors.Is(err, ErrUnknownEventType) {
				c.logger.Debug("skipping unknown event", zap.ByteString("data", data))
			} else {
				c.logger.Error("unmarshaling server event", err, zap.ByteString("data", data))
			}
			continue
		}
		c.handleEvent(event)
	}
}

// handleEvent tracks response state and dispatches callbacks. Split from the
// read loop so it can be exercised without a connection.
func (c *Client) handleEvent(event *ServerEvent) {
	c.logger.Debug(
		"received event",
		zap.String("type", string(event.Type)),
		zap.String("event_id", event.EventId),
	)
	switch p := event.Param.(type) {
	case *ServerEventParamError:
		c.logger.Error(
			"server reported an error",
			errors.New(p.Message()),
			zap.String("code", p.Code()),
			zap.Any("error", p.Error),
		)

	case *ServerEventParamResponseCreated:
		c.mu.Lock()
		c.responding = true
		c.currentResponseId = p.ResponseId()
		c.mu.Unlock()

	case *ServerEventParamResponseOutputItemAdded:
		c.mu.Lock()
		c.currentItemId = p.ItemId()
		c.mu.Unlock()

	case *ServerEventParamResponseDone:
		c.mu.Lock()
		c.responding = false
		c.currentResponseId = ""
		c.currentItemId = ""
		c.mu.Unlock()

	case *ServerEventParamInputAudioBufferSpeechStarted:
		c.logger.Info("speech started", zap.Int("audio_start_ms", p.AudioStartMs))
		if c.Responding() {
			if err := c.HandleInterruption(); err != nil {
				c.logger.Error("handling interruption", err)
			}
		}
		if c.onInterrupt != nil {
			c.onInterrupt()
		}

	case *ServerEventParamInputAudioBufferSpeechStopped:
		c.logger.Info("speech stopped", zap.Int("audio_end_ms", p.AudioEndMs))

	case *ServerEventParamResponseTextDelta:
		if c.onTextDelta != nil {
			c.onTextDelta(p.Delta)
		}

	case *ServerEventParamResponseAudioDelta:
		if c.onAudioDelta != nil {
			pcm, err := p.Bytes()
			if err != nil {
				c.logger.Error("decoding audio delta", err)
				break
			}
			c.onAudioDelta(pcm)
		}

	case *ServerEventParamResponseAudioTranscriptDelta:
		if c.onOutputTranscript != nil {
			c.onOutputTranscript(p.Delta)
		}

	case *ServerEventParamConversationItemInputAudioTranscriptionCompleted:
		if c.onInputTranscript != nil {
			c.onInputTranscript(p.Transcript)
		}

	case *ServerEventParamResponseFunctionCallArgumentsDone:
		go c.dispatchToolCall(p)
	}

	if h, ok := c.extra[event.Type]; ok {
		h(event)
	}
}

// dispatchToolCall runs the named tool and reports its result (or failure)
// back to the conversation so the model can carry on either way.
func (c *Client) dispatchToolCall(p *ServerEventParamResponseFunctionCallArgumentsDone) {
	c.logger.Info(
		"dispatching tool call",
		zap.String("name", p.Name),
		zap.String("call_id", p.CallId),
	)
	output := func() string {
		if c.registry == nil {
			return fmt.Sprintf("no tool named %q is available", p.Name)
		}
		args, err := p.ArgumentsMap()
		if err != nil {
			return fmt.Sprintf("invalid arguments for tool %q: %v", p.Name, err)
		}
		result, err := c.registry.Execute(c.ctx, p.Name, args)
		if err != nil {
			return fmt.Sprintf("tool %q failed: %v", p.Name, err)
		}
		return result.Output
	}()
	if err := c.SendFunctionResult(p.CallId, output); err != nil {
		c.logger.Error("sending function result", err, zap.String("call_id", p.CallId))
	}
}
