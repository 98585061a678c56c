// Package agents wires the realtime client, local audio and the terminal
// into interactive voice agents.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pkg "github.com/bt-bridge/openai-realtime-cli"
	"github.com/bt-bridge/openai-realtime-cli/audio"
	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/bt-bridge/openai-realtime-cli/tools"
	"github.com/bt-bridge/openai-realtime-cli/transcript"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
)

// CLIAgent runs one voice conversation in the terminal. Spawn wires
// everything together; RunManual and RunStreaming drive the two turn
// detection modes.
type CLIAgent struct {
	logger   shared.LoggerAdapter
	printer  *shared.Printer
	client   *pkg.Client
	audio    *audio.Handler
	registry *tools.Registry
	store    *transcript.Store

	sessionID int64

	mu           sync.Mutex
	recording    bool
	assistantBuf strings.Builder
}

// Spawn creates the client, claims the audio devices, registers all
// handlers and connects. The returned channel closes when the session ends.
func (a *CLIAgent) Spawn(
	ctx context.Context,
	logger shared.LoggerAdapter,
	apiKey, model string,
	mode pkg.TurnDetectionMode,
	cfg *pkg.SessionConfig,
	registry *tools.Registry,
	store *transcript.Store,
	printer *shared.Printer,
	baseUrl ...string,
) (<-chan struct{}, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if apiKey == "" {
		return nil, shared.ErrNoAPIKey
	}
	if printer == nil {
		return nil, shared.ErrNoPrinter
	}
	a.logger = logger
	a.printer = printer
	a.registry = registry
	a.store = store
	a.logger.Info("spawning CLI agent", zap.String("mode", mode.String()))
	if err := a.printer.Writeln("🤖 Spawning CLI agent...\n", 0); err != nil {
		a.logger.Error("printing spawning message", err)
	}

	var err error
	if len(baseUrl) > 0 {
		a.client, err = pkg.NewClient(ctx, a.logger, apiKey, model, mode, baseUrl[0])
	} else {
		a.client, err = pkg.NewClient(ctx, a.logger, apiKey, model, mode, "")
	}
	if err != nil {
		a.logger.Error("creating client", err)
		return nil, err
	}

	if cfg == nil {
		cfg = pkg.DefaultSessionConfig(mode, pkg.DefaultInstructions, pkg.DefaultVoice)
	}
	if err := a.client.SetConfig(cfg); err != nil {
		a.logger.Error("setting up session config", err)
		return nil, err
	}
	if registry != nil {
		if err := a.client.SetRegistry(registry); err != nil {
			a.logger.Error("setting up tool registry", err)
			return nil, err
		}
	}
	if err := a.printer.Writeln("📋 Session Config\n", 0); err != nil {
		a.logger.Error("printing session config message", err)
	}
	yamlBytes, err := yaml.MarshalWithOptions(cfg, yaml.UseJSONMarshaler())
	if err != nil {
		a.logger.Error("marshaling session config to yaml", err)
		return nil, err
	}
	if err := a.printer.Write(string(yamlBytes), 1); err != nil {
		a.logger.Error("printing session config", err)
		return nil, err
	}

	if err := a.printer.Writeln("\n🎤 Accessing audio devices...", 0); err != nil {
		a.logger.Error("printing audio access message", err)
	}
	a.audio, err = audio.NewHandler(a.logger)
	if err != nil {
		a.logger.Error("creating audio handler", err)
		if err := a.printer.Writeln("❌ Unable to access audio devices. Ensure a microphone is connected and permitted.\n", 0); err != nil {
			a.logger.Error("printing audio access failure message", err)
		}
		return nil, err
	}
	if err := a.printer.Writeln("✅ Audio devices ready.\n", 0); err != nil {
		a.logger.Error("printing audio access success message", err)
	}

	if err := a.registerHandlers(); err != nil {
		a.logger.Error("registering handlers", err)
		return nil, err
	}

	if a.store != nil {
		a.sessionID, err = a.store.BeginSession(ctx, model, mode.String())
		if err != nil {
			a.logger.Error("beginning transcript session", err)
			return nil, err
		}
	}

	if err := a.client.Start(); err != nil {
		a.logger.Error("starting client", err)
		return nil, err
	}
	if err := a.printer.Writeln("🔗 Connected.\n", 0); err != nil {
		a.logger.Error("printing connected message", err)
	}
	return a.client.Done(), nil
}

func (a *CLIAgent) registerHandlers() error {
	if err := a.client.RegisterAudioHandler(func(pcm []byte) {
		if err := a.audio.Play(pcm); err != nil {
			a.logger.Error("queueing playback", err)
		}
	}); err != nil {
		return fmt.Errorf("registering audio handler: %w", err)
	}

	if err := a.client.RegisterOutputTranscriptHandler(func(delta string) {
		a.mu.Lock()
		if a.assistantBuf.Len() == 0 {
			_ = a.printer.Write("\r\n🤖 ", 0)
		}
		a.assistantBuf.WriteString(delta)
		a.mu.Unlock()
		_ = a.printer.Write(delta, 0)
	}); err != nil {
		return fmt.Errorf("registering output transcript handler: %w", err)
	}

	if err := a.client.RegisterInputTranscriptHandler(func(text string) {
		_ = a.printer.Writeln("\r\n🗣  "+strings.TrimSpace(text), 0)
		a.record(transcript.RoleUser, transcript.KindTranscript, text)
	}); err != nil {
		return fmt.Errorf("registering input transcript handler: %w", err)
	}

	if err := a.client.RegisterInterruptHandler(func() {
		a.logger.Debug("discarding queued playback",
			zap.Duration("pending", a.audio.PendingPlayback()),
		)
		a.audio.StopPlayback()
		a.flushAssistant()
	}); err != nil {
		return fmt.Errorf("registering interrupt handler: %w", err)
	}

	if err := a.client.RegisterExtraHandler(pkg.ServerEventTypeResponseDone, func(_ *pkg.ServerEvent) {
		a.flushAssistant()
	}); err != nil {
		return fmt.Errorf("registering response done handler: %w", err)
	}

	if err := a.client.RegisterExtraHandler(
		pkg.ServerEventTypeResponseFunctionCallArgumentsDone,
		func(ev *pkg.ServerEvent) {
			if p, ok := ev.Param.(*pkg.ServerEventParamResponseFunctionCallArgumentsDone); ok {
				_ = a.printer.Writeln(fmt.Sprintf("\r\n🔧 %s(%s)", p.Name, p.Arguments), 0)
				a.record(transcript.RoleTool, transcript.KindToolCall, p.Name+" "+p.Arguments)
			}
		},
	); err != nil {
		return fmt.Errorf("registering function call handler: %w", err)
	}
	return nil
}

// flushAssistant writes the accumulated assistant transcript to the store
// and terminates the printed line.
func (a *CLIAgent) flushAssistant() {
	a.mu.Lock()
	text := a.assistantBuf.String()
	a.assistantBuf.Reset()
	a.mu.Unlock()
	if text == "" {
		return
	}
	_ = a.printer.Writeln("", 0)
	a.record(transcript.RoleAssistant, transcript.KindTranscript, text)
}

func (a *CLIAgent) record(role, kind, content string) {
	if a.store == nil {
		return
	}
	if err := a.store.AppendTurn(context.Background(), a.sessionID, role, kind, content); err != nil {
		a.logger.Error("appending transcript turn", err)
	}
}

// RunManual drives a push-to-talk conversation: r or space toggles
// recording, typed text plus enter sends a message, q quits.
func (a *CLIAgent) RunManual(ctx context.Context) error {
	_ = a.printer.Writeln("Press r/space to talk, type a message and press enter, q to quit.\n", 0)

	commands := make(chan Command)
	kb := NewKeyboard()
	kbCtx, kbCancel := context.WithCancel(ctx)
	kbDone := make(chan error, 1)
	go func() { kbDone <- kb.Run(kbCtx, commands) }()
	// stopKeyboard waits for Run to return so the terminal is restored
	// before the agent hands control back.
	stopKeyboard := func() {
		kbCancel()
		<-kbDone
	}

	for {
		select {
		case <-ctx.Done():
			stopKeyboard()
			return ctx.Err()
		case <-a.client.Done():
			stopKeyboard()
			return nil
		case err := <-kbDone:
			kbCancel()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case cmd := <-commands:
			switch cmd.Kind {
			case CommandQuit:
				_ = a.printer.Writeln("\r\n👋 Bye.", 0)
				stopKeyboard()
				return nil
			case CommandToggleRecord:
				if err := a.toggleRecord(); err != nil {
					a.logger.Error("toggling recording", err)
				}
			case CommandSubmitText:
				a.record(transcript.RoleUser, transcript.KindText, cmd.Text)
				if err := a.client.SendText(cmd.Text); err != nil {
					a.logger.Error("sending text", err)
				}
			}
		}
	}
}

func (a *CLIAgent) toggleRecord() error {
	a.mu.Lock()
	recording := a.recording
	a.mu.Unlock()
	if !recording {
		if err := a.audio.StartRecording(); err != nil {
			return err
		}
		a.mu.Lock()
		a.recording = true
		a.mu.Unlock()
		return a.printer.Writeln("\r🎙  Listening... press r/space again to send.", 0)
	}
	pcm, err := a.audio.StopRecording()
	a.mu.Lock()
	a.recording = false
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return a.printer.Writeln("\r(nothing recorded)", 0)
	}
	if err := a.printer.Writeln(fmt.Sprintf("\r📤 Sending %.1fs of audio...", audio.Duration(len(pcm), a.audio.SampleRate(), a.audio.Channels()).Seconds()), 0); err != nil {
		a.logger.Error("printing send message", err)
	}
	return a.client.SendAudio(pcm)
}

// RunStreaming drives a server VAD conversation: the microphone streams
// continuously, the API detects turns and barge-in, typed text still works,
// q quits.
func (a *CLIAgent) RunStreaming(ctx context.Context) error {
	_ = a.printer.Writeln("Streaming from the microphone. Speak to converse, type and press enter to send text, q to quit.\n", 0)

	if err := a.audio.StartStreaming(func(pcm []byte) {
		if err := a.client.StreamAudio(pcm); err != nil {
			a.logger.Debug("streaming audio chunk", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("starting microphone stream: %w", err)
	}
	defer func() {
		if err := a.audio.StopStreaming(); err != nil {
			a.logger.Error("stopping microphone stream", err)
		}
	}()

	commands := make(chan Command)
	kb := NewKeyboard()
	kbCtx, kbCancel := context.WithCancel(ctx)
	kbDone := make(chan error, 1)
	go func() { kbDone <- kb.Run(kbCtx, commands) }()
	stopKeyboard := func() {
		kbCancel()
		<-kbDone
	}

	for {
		select {
		case <-ctx.Done():
			stopKeyboard()
			return ctx.Err()
		case <-a.client.Done():
			stopKeyboard()
			return nil
		case err := <-kbDone:
			kbCancel()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case cmd := <-commands:
			switch cmd.Kind {
			case CommandQuit:
				_ = a.printer.Writeln("\r\n👋 Bye.", 0)
				stopKeyboard()
				return nil
			case CommandSubmitText:
				a.record(transcript.RoleUser, transcript.KindText, cmd.Text)
				if err := a.client.SendText(cmd.Text); err != nil {
					a.logger.Error("sending text", err)
				}
			case CommandToggleRecord:
				// The microphone is already live in this mode.
			}
		}
	}
}

// Close releases the connection and the audio devices.
func (a *CLIAgent) Close() error {
	var errs []error
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing client: %w", err))
		}
	}
	if a.audio != nil {
		if err := a.audio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audio handler: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing transcript store: %w", err))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
