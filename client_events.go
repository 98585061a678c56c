package realtime

import (
	"encoding/base64"
	"errors"

	"github.com/bytedance/sonic"
)

// session.update
type ClientEventParamSessionUpdate struct {
	Session *SessionConfig
}

func (p *ClientEventParamSessionUpdate) New(m map[string]any) error {
	raw, ok := m["session"].(map[string]any)
	if !ok {
		return errors.New("missing session")
	}
	data, err := sonic.Marshal(raw)
	if err != nil {
		return err
	}
	cfg := new(SessionConfig)
	if err := sonic.Unmarshal(data, cfg); err != nil {
		return err
	}
	p.Session = cfg
	return nil
}

func (p *ClientEventParamSessionUpdate) Json() map[string]any {
	if p.Session == nil {
		return map[string]any{"session": nil}
	}
	return map[string]any{
		"session": p.Session.Json(),
	}
}

// input_audio_buffer.append
type ClientEventParamInputAudioBufferAppend struct {
	Audio string // base64 PCM16
}

// NewInputAudioBufferAppend base64-encodes a raw PCM16 chunk.
func NewInputAudioBufferAppend(pcm []byte) *ClientEventParamInputAudioBufferAppend {
	return &ClientEventParamInputAudioBufferAppend{
		Audio: base64.StdEncoding.EncodeToString(pcm),
	}
}

func (p *ClientEventParamInputAudioBufferAppend) New(m map[string]any) error {
	if v, ok := m["audio"].(string); ok {
		p.Audio = v
	} else {
		return errors.New("missing audio")
	}
	return nil
}

func (p *ClientEventParamInputAudioBufferAppend) Json() map[string]any {
	return map[string]any{
		"audio": p.Audio,
	}
}

// ClientEventParamEmpty covers client events without a payload
// (input_audio_buffer.commit, input_audio_buffer.clear, response.cancel).
type ClientEventParamEmpty struct{}

func (p *ClientEventParamEmpty) New(map[string]any) error {
	return nil
}

func (p *ClientEventParamEmpty) Json() map[string]any {
	return map[string]any{}
}

// conversation.item.create
type ClientEventParamConversationItemCreate struct {
	Item map[string]any
}

// NewUserTextItem builds a user message item carrying input text.
func NewUserTextItem(text string) *ClientEventParamConversationItemCreate {
	return &ClientEventParamConversationItemCreate{
		Item: map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{
					"type": "input_text",
					"text": text,
				},
			},
		},
	}
}

// NewFunctionCallOutputItem builds the item that carries a tool result back
// to the conversation.
func NewFunctionCallOutputItem(callId, output string) *ClientEventParamConversationItemCreate {
	return &ClientEventParamConversationItemCreate{
		Item: map[string]any{
			"type":    "function_call_output",
			"call_id": callId,
			"output":  output,
		},
	}
}

func (p *ClientEventParamConversationItemCreate) New(m map[string]any) error {
	if v, ok := m["item"].(map[string]any); ok {
		p.Item = v
	} else {
		return errors.New("missing item")
	}
	return nil
}

func (p *ClientEventParamConversationItemCreate) Json() map[string]any {
	return map[string]any{
		"item": p.Item,
	}
}

// conversation.item.truncate
// AudioEndMs zero means "no cut point": only item_id goes on the wire and
// the server clamps to what was generated. An explicit audio_end_ms of 0
// would wipe the item's audio instead.
type ClientEventParamConversationItemTruncate struct {
	ItemId       string
	ContentIndex int
	AudioEndMs   int
}

func (p *ClientEventParamConversationItemTruncate) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	}
	if v, ok := asInt(m["audio_end_ms"]); ok {
		p.AudioEndMs = v
	}
	return nil
}

func (p *ClientEventParamConversationItemTruncate) Json() map[string]any {
	resp := map[string]any{
		"item_id": p.ItemId,
	}
	if p.AudioEndMs > 0 {
		resp["content_index"] = p.ContentIndex
		resp["audio_end_ms"] = p.AudioEndMs
	}
	return resp
}

// conversation.item.delete
type ClientEventParamConversationItemDelete struct {
	ItemId string
}

func (p *ClientEventParamConversationItemDelete) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	return nil
}

func (p *ClientEventParamConversationItemDelete) Json() map[string]any {
	return map[string]any{
		"item_id": p.ItemId,
	}
}

// response.create
type ClientEventParamResponseCreate struct {
	Response map[string]any
}

// NewResponseCreate requests a text+audio response, optionally overriding
// the session tool list for this response only.
func NewResponseCreate(tools []map[string]any) *ClientEventParamResponseCreate {
	resp := map[string]any{
		"modalities": []string{"text", "audio"},
	}
	if len(tools) > 0 {
		resp["tools"] = tools
	}
	return &ClientEventParamResponseCreate{Response: resp}
}

func (p *ClientEventParamResponseCreate) New(m map[string]any) error {
	if v, ok := m["response"].(map[string]any); ok {
		p.Response = v
	} else {
		return errors.New("missing response")
	}
	return nil
}

func (p *ClientEventParamResponseCreate) Json() map[string]any {
	return map[string]any{
		"response": p.Response,
	}
}
