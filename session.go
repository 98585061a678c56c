package realtime

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// TurnDetectionMode selects who decides when the user's turn ends: the
// server's voice-activity detection, or explicit commits from this client.
type TurnDetectionMode int

const (
	TurnDetectionManual TurnDetectionMode = iota
	TurnDetectionServerVAD
)

func (m TurnDetectionMode) String() string {
	switch m {
	case TurnDetectionManual:
		return "manual"
	case TurnDetectionServerVAD:
		return "server_vad"
	default:
		return fmt.Sprintf("TurnDetectionMode(%d)", int(m))
	}
}

// Server VAD defaults, matching what the API documents as sensible for
// near-field microphones.
const (
	vadThreshold         = 0.5
	vadPrefixPaddingMs   = 500
	vadSilenceDurationMs = 200
)

type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

type InputAudioTranscription struct {
	Model string `json:"model"`
}

// SessionConfig is the session payload of a session.update event. Field set
// and wire names follow the realtime API; pointers with omitempty keep
// unset fields off the wire.
type SessionConfig struct {
	Modalities              []string                 `json:"modalities,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
	Voice                   string                   `json:"voice,omitempty"`
	InputAudioFormat        string                   `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string                   `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []map[string]any         `json:"tools,omitempty"`
	ToolChoice              string                   `json:"tool_choice,omitempty"`
	Temperature             float64                  `json:"temperature,omitempty"`
	MaxResponseOutputTokens any                      `json:"max_response_output_tokens,omitempty"`
}

// DefaultSessionConfig builds the session the CLIs start with: pcm16 both
// ways, whisper-1 input transcription, automatic tool choice, and server
// VAD when the mode asks for it.
func DefaultSessionConfig(mode TurnDetectionMode, instructions, voice string) *SessionConfig {
	cfg := &SessionConfig{
		Modalities:              []string{"text", "audio"},
		Instructions:            instructions,
		Voice:                   voice,
		InputAudioFormat:        "pcm16",
		OutputAudioFormat:       "pcm16",
		InputAudioTranscription: &InputAudioTranscription{Model: "whisper-1"},
		ToolChoice:              "auto",
		Temperature:             0.8,
	}
	if mode == TurnDetectionServerVAD {
		cfg.TurnDetection = &TurnDetection{
			Type:              "server_vad",
			Threshold:         vadThreshold,
			PrefixPaddingMs:   vadPrefixPaddingMs,
			SilenceDurationMs: vadSilenceDurationMs,
		}
	}
	return cfg
}

func (c *SessionConfig) MarshalJSON() ([]byte, error) {
	type alias SessionConfig
	return sonic.Marshal((*alias)(c))
}

func (c *SessionConfig) UnmarshalJSON(data []byte) error {
	type alias SessionConfig
	return sonic.Unmarshal(data, (*alias)(c))
}

// Json renders the config as a generic map for event param embedding.
func (c *SessionConfig) Json() map[string]any {
	data, err := c.MarshalJSON()
	if err != nil {
		return map[string]any{}
	}
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return map[string]any{}
	}
	return raw
}
