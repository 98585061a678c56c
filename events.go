package realtime

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

type EventType string

type ServerEventType EventType

type ClientEventType EventType

// Server event types
const (
	ServerEventTypeError                                            ServerEventType = "error"
	ServerEventTypeSessionCreated                                   ServerEventType = "session.created"
	ServerEventTypeSessionUpdated                                   ServerEventType = "session.updated"
	ServerEventTypeConversationItemCreated                          ServerEventType = "conversation.item.created"
	ServerEventTypeConversationItemInputAudioTranscriptionCompleted ServerEventType = "conversation.item.input_audio_transcription.completed"
	ServerEventTypeConversationItemInputAudioTranscriptionFailed    ServerEventType = "conversation.item.input_audio_transcription.failed"
	ServerEventTypeConversationItemTruncated                        ServerEventType = "conversation.item.truncated"
	ServerEventTypeConversationItemDeleted                          ServerEventType = "conversation.item.deleted"
	ServerEventTypeInputAudioBufferCommitted                        ServerEventType = "input_audio_buffer.committed"
	ServerEventTypeInputAudioBufferCleared                          ServerEventType = "input_audio_buffer.cleared"
	ServerEventTypeInputAudioBufferSpeechStarted                    ServerEventType = "input_audio_buffer.speech_started"
	ServerEventTypeInputAudioBufferSpeechStopped                    ServerEventType = "input_audio_buffer.speech_stopped"
	ServerEventTypeResponseCreated                                  ServerEventType = "response.created"
	ServerEventTypeResponseDone                                     ServerEventType = "response.done"
	ServerEventTypeResponseOutputItemAdded                          ServerEventType = "response.output_item.added"
	ServerEventTypeResponseOutputItemDone                           ServerEventType = "response.output_item.done"
	ServerEventTypeResponseContentPartAdded                         ServerEventType = "response.content_part.added"
	ServerEventTypeResponseContentPartDone                          ServerEventType = "response.content_part.done"
	ServerEventTypeResponseTextDelta                                ServerEventType = "response.text.delta"
	ServerEventTypeResponseTextDone                                 ServerEventType = "response.text.done"
	ServerEventTypeResponseAudioTranscriptDelta                     ServerEventType = "response.audio_transcript.delta"
	ServerEventTypeResponseAudioTranscriptDone                      ServerEventType = "response.audio_transcript.done"
	ServerEventTypeResponseAudioDelta                               ServerEventType = "response.audio.delta"
	ServerEventTypeResponseAudioDone                                ServerEventType = "response.audio.done"
	ServerEventTypeResponseFunctionCallArgumentsDelta               ServerEventType = "response.function_call_arguments.delta"
	ServerEventTypeResponseFunctionCallArgumentsDone                ServerEventType = "response.function_call_arguments.done"
	ServerEventTypeRateLimitsUpdated                                ServerEventType = "rate_limits.updated"
)

// Client event types
const (
	ClientEventTypeSessionUpdate            ClientEventType = "session.update"
	ClientEventTypeInputAudioBufferAppend   ClientEventType = "input_audio_buffer.append"
	ClientEventTypeInputAudioBufferCommit   ClientEventType = "input_audio_buffer.commit"
	ClientEventTypeInputAudioBufferClear    ClientEventType = "input_audio_buffer.clear"
	ClientEventTypeConversationItemCreate   ClientEventType = "conversation.item.create"
	ClientEventTypeConversationItemTruncate ClientEventType = "conversation.item.truncate"
	ClientEventTypeConversationItemDelete   ClientEventType = "conversation.item.delete"
	ClientEventTypeResponseCreate           ClientEventType = "response.create"
	ClientEventTypeResponseCancel           ClientEventType = "response.cancel"
)

// ErrUnknownEventType is returned when the server sends an event type this
// client has no param mapping for. The read loop logs and skips those.
var ErrUnknownEventType = errors.New("unknown event type")

// EventParam holds the type-specific payload of an event.
type EventParam interface {
	New(m map[string]any) error
	Json() map[string]any
}

type ServerEvent struct {
	EventId string
	Type    ServerEventType
	Param   EventParam
}

func newServerEventParam(t ServerEventType) (EventParam, error) {
	switch t {
	case ServerEventTypeError:
		return new(ServerEventParamError), nil
	case ServerEventTypeSessionCreated:
		return new(ServerEventParamSessionCreated), nil
	case ServerEventTypeSessionUpdated:
		return new(ServerEventParamSessionUpdated), nil
	case ServerEventTypeConversationItemCreated:
		return new(ServerEventParamConversationItemCreated), nil
	case ServerEventTypeConversationItemInputAudioTranscriptionCompleted:
		return new(ServerEventParamConversationItemInputAudioTranscriptionCompleted), nil
	case ServerEventTypeConversationItemInputAudioTranscriptionFailed:
		return new(ServerEventParamConversationItemInputAudioTranscriptionFailed), nil
	case ServerEventTypeConversationItemTruncated:
		return new(ServerEventParamConversationItemTruncated), nil
	case ServerEventTypeConversationItemDeleted:
		return new(ServerEventParamConversationItemDeleted), nil
	case ServerEventTypeInputAudioBufferCommitted:
		return new(ServerEventParamInputAudioBufferCommitted), nil
	case ServerEventTypeInputAudioBufferCleared:
		return new(ServerEventParamEmpty), nil
	case ServerEventTypeInputAudioBufferSpeechStarted:
		return new(ServerEventParamInputAudioBufferSpeechStarted), nil
	case ServerEventTypeInputAudioBufferSpeechStopped:
		return new(ServerEventParamInputAudioBufferSpeechStopped), nil
	case ServerEventTypeResponseCreated:
		return new(ServerEventParamResponseCreated), nil
	case ServerEventTypeResponseDone:
		return new(ServerEventParamResponseDone), nil
	case ServerEventTypeResponseOutputItemAdded:
		return new(ServerEventParamResponseOutputItemAdded), nil
	case ServerEventTypeResponseOutputItemDone:
		return new(ServerEventParamResponseOutputItemDone), nil
	case ServerEventTypeResponseContentPartAdded:
		return new(ServerEventParamResponseContentPartAdded), nil
	case ServerEventTypeResponseContentPartDone:
		return new(ServerEventParamResponseContentPartDone), nil
	case ServerEventTypeResponseTextDelta:
		return new(ServerEventParamResponseTextDelta), nil
	case ServerEventTypeResponseTextDone:
		return new(ServerEventParamResponseTextDone), nil
	case ServerEventTypeResponseAudioTranscriptDelta:
		return new(ServerEventParamResponseAudioTranscriptDelta), nil
	case ServerEventTypeResponseAudioTranscriptDone:
		return new(ServerEventParamResponseAudioTranscriptDone), nil
	case ServerEventTypeResponseAudioDelta:
		return new(ServerEventParamResponseAudioDelta), nil
	case ServerEventTypeResponseAudioDone:
		return new(ServerEventParamResponseAudioDone), nil
	case ServerEventTypeResponseFunctionCallArgumentsDelta:
		return new(ServerEventParamResponseFunctionCallArgumentsDelta), nil
	case ServerEventTypeResponseFunctionCallArgumentsDone:
		return new(ServerEventParamResponseFunctionCallArgumentsDone), nil
	case ServerEventTypeRateLimitsUpdated:
		return new(ServerEventParamRateLimitsUpdated), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, t)
	}
}

func (e *ServerEvent) fromRaw(raw map[string]any) error {
	if v, ok := raw["event_id"].(string); ok {
		e.EventId = v
		delete(raw, "event_id")
	} else {
		return errors.New("missing event_id")
	}
	if v, ok := raw["type"].(string); ok {
		e.Type = ServerEventType(v)
		delete(raw, "type")
	} else {
		return errors.New("missing type")
	}
	param, err := newServerEventParam(e.Type)
	if err != nil {
		return err
	}
	e.Param = param
	return e.Param.New(raw)
}

func (e *ServerEvent) toRaw() (map[string]any, error) {
	if e.EventId == "" {
		return nil, errors.New("EventId is empty")
	}
	if e.Type == "" {
		return nil, errors.New("Type is empty")
	}
	if e.Param == nil {
		return nil, errors.New("Param is nil")
	}
	resp := map[string]any{}
	for k, v := range e.Param.Json() {
		resp[k] = v
	}
	resp["event_id"] = e.EventId
	resp["type"] = e.Type
	return resp, nil
}

func (e *ServerEvent) MarshalJSON() ([]byte, error) {
	raw, err := e.toRaw()
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(raw)
}

func (e *ServerEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	return e.fromRaw(raw)
}

func (e *ServerEvent) MarshalYAML() ([]byte, error) {
	raw, err := e.toRaw()
	if err != nil {
		return nil, err
	}
	return yaml.MarshalWithOptions(raw, yaml.UseJSONMarshaler())
}

func (e *ServerEvent) UnmarshalYAML(data []byte) error {
	var raw map[string]any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseJSONUnmarshaler()); err != nil {
		return err
	}
	return e.fromRaw(raw)
}

// ClientEvent is an event this client sends to the API. Event IDs are
// generated on construction.
type ClientEvent struct {
	EventId string
	Type    ClientEventType
	Param   EventParam
}

func NewClientEvent(t ClientEventType, param EventParam) *ClientEvent {
	return &ClientEvent{
		EventId: uuid.NewString(),
		Type:    t,
		Param:   param,
	}
}

func (e *ClientEvent) MarshalJSON() ([]byte, error) {
	if e.Type == "" {
		return nil, errors.New("Type is empty")
	}
	resp := map[string]any{}
	if e.Param != nil {
		for k, v := range e.Param.Json() {
			resp[k] = v
		}
	}
	if e.EventId != "" {
		resp["event_id"] = e.EventId
	}
	resp["type"] = e.Type
	return sonic.Marshal(resp)
}

func (e *ClientEvent) MarshalYAML() ([]byte, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return yaml.MarshalWithOptions(raw, yaml.UseJSONMarshaler())
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

// ServerEventParamEmpty covers server events that carry no payload beyond
// event_id and type (e.g. input_audio_buffer.cleared).
type ServerEventParamEmpty struct{}

func (p *ServerEventParamEmpty) New(map[string]any) error {
	return nil
}

func (p *ServerEventParamEmpty) Json() map[string]any {
	return map[string]any{}
}

// error
type ServerEventParamError struct {
	Error map[string]any
}

func (p *ServerEventParamError) New(m map[string]any) error {
	if v, ok := m["error"].(map[string]any); ok {
		p.Error = v
	} else {
		return errors.New("missing error")
	}
	return nil
}

func (p *ServerEventParamError) Json() map[string]any {
	return map[string]any{
		"error": p.Error,
	}
}

// Message pulls the human part of the error payload.
func (p *ServerEventParamError) Message() string {
	if v, ok := p.Error["message"].(string); ok {
		return v
	}
	return ""
}

func (p *ServerEventParamError) Code() string {
	if v, ok := p.Error["code"].(string); ok {
		return v
	}
	return ""
}

// session.created
type ServerEventParamSessionCreated struct {
	Session map[string]any
}

func (p *ServerEventParamSessionCreated) New(m map[string]any) error {
	if v, ok := m["session"].(map[string]any); ok {
		p.Session = v
	} else {
		return errors.New("missing session")
	}
	return nil
}

func (p *ServerEventParamSessionCreated) Json() map[string]any {
	return map[string]any{
		"session": p.Session,
	}
}

// session.updated
type ServerEventParamSessionUpdated struct {
	Session map[string]any
}

func (p *ServerEventParamSessionUpdated) New(m map[string]any) error {
	if v, ok := m["session"].(map[string]any); ok {
		p.Session = v
	} else {
		return errors.New("missing session")
	}
	return nil
}

func (p *ServerEventParamSessionUpdated) Json() map[string]any {
	return map[string]any{
		"session": p.Session,
	}
}

// conversation.item.created
type ServerEventParamConversationItemCreated struct {
	PreviousItemId any
	Item           map[string]any
}

func (p *ServerEventParamConversationItemCreated) New(m map[string]any) error {
	if v, ok := m["previous_item_id"]; ok {
		p.PreviousItemId = v // can be string or nil
	} else {
		p.PreviousItemId = nil
	}
	if item, ok := m["item"].(map[string]any); ok {
		p.Item = item
	} else {
		return errors.New("missing item")
	}
	return nil
}

func (p *ServerEventParamConversationItemCreated) Json() map[string]any {
	return map[string]any{
		"previous_item_id": p.PreviousItemId,
		"item":             p.Item,
	}
}

// conversation.item.input_audio_transcription.completed
type ServerEventParamConversationItemInputAudioTranscriptionCompleted struct {
	ItemId       string
	ContentIndex int
	Transcript   string
}

func (p *ServerEventParamConversationItemInputAudioTranscriptionCompleted) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["transcript"].(string); ok {
		p.Transcript = v
	} else {
		return errors.New("missing transcript")
	}
	return nil
}

func (p *ServerEventParamConversationItemInputAudioTranscriptionCompleted) Json() map[string]any {
	return map[string]any{
		"item_id":       p.ItemId,
		"content_index": p.ContentIndex,
		"transcript":    p.Transcript,
	}
}

// conversation.item.input_audio_transcription.failed
type ServerEventParamConversationItemInputAudioTranscriptionFailed struct {
	ItemId       string
	ContentIndex int
	Error        map[string]any
}

func (p *ServerEventParamConversationItemInputAudioTranscriptionFailed) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["error"].(map[string]any); ok {
		p.Error = v
	} else {
		return errors.New("missing error")
	}
	return nil
}

func (p *ServerEventParamConversationItemInputAudioTranscriptionFailed) Json() map[string]any {
	return map[string]any{
		"item_id":       p.ItemId,
		"content_index": p.ContentIndex,
		"error":         p.Error,
	}
}

// conversation.item.truncated
type ServerEventParamConversationItemTruncated struct {
	ItemId       string
	ContentIndex int
	AudioEndMs   int
}

func (p *ServerEventParamConversationItemTruncated) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := asInt(m["audio_end_ms"]); ok {
		p.AudioEndMs = v
	} else {
		return errors.New("missing audio_end_ms")
	}
	return nil
}

func (p *ServerEventParamConversationItemTruncated) Json() map[string]any {
	return map[string]any{
		"item_id":       p.ItemId,
		"content_index": p.ContentIndex,
		"audio_end_ms":  p.AudioEndMs,
	}
}

// conversation.item.deleted
type ServerEventParamConversationItemDeleted struct {
	ItemId string
}

func (p *ServerEventParamConversationItemDeleted) New(m map[string]any) error {
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	return nil
}

func (p *ServerEventParamConversationItemDeleted) Json() map[string]any {
	return map[string]any{
		"item_id": p.ItemId,
	}
}

// input_audio_buffer.committed
type ServerEventParamInputAudioBufferCommitted struct {
	PreviousItemId any
	ItemId         string
}

func (p *ServerEventParamInputAudioBufferCommitted) New(m map[string]any) error {
	if v, ok := m["previous_item_id"]; ok {
		p.PreviousItemId = v
	} else {
		p.PreviousItemId = nil
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	return nil
}

func (p *ServerEventParamInputAudioBufferCommitted) Json() map[string]any {
	return map[string]any{
		"previous_item_id": p.PreviousItemId,
		"item_id":          p.ItemId,
	}
}

// input_audio_buffer.speech_started
type ServerEventParamInputAudioBufferSpeechStarted struct {
	AudioStartMs int
	ItemId       string
}

func (p *ServerEventParamInputAudioBufferSpeechStarted) New(m map[string]any) error {
	if v, ok := asInt(m["audio_start_ms"]); ok {
		p.AudioStartMs = v
	} else {
		return errors.New("missing audio_start_ms")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	return nil
}

func (p *ServerEventParamInputAudioBufferSpeechStarted) Json() map[string]any {
	return map[string]any{
		"audio_start_ms": p.AudioStartMs,
		"item_id":        p.ItemId,
	}
}

// input_audio_buffer.speech_stopped
type ServerEventParamInputAudioBufferSpeechStopped struct {
	AudioEndMs int
	ItemId     string
}

func (p *ServerEventParamInputAudioBufferSpeechStopped) New(m map[string]any) error {
	if v, ok := asInt(m["audio_end_ms"]); ok {
		p.AudioEndMs = v
	} else {
		return errors.New("missing audio_end_ms")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	return nil
}

func (p *ServerEventParamInputAudioBufferSpeechStopped) Json() map[string]any {
	return map[string]any{
		"audio_end_ms": p.AudioEndMs,
		"item_id":      p.ItemId,
	}
}

// response.created
type ServerEventParamResponseCreated struct {
	Response map[string]any
}

func (p *ServerEventParamResponseCreated) New(m map[string]any) error {
	if v, ok := m["response"].(map[string]any); ok {
		p.Response = v
	} else {
		return errors.New("missing response")
	}
	return nil
}

func (p *ServerEventParamResponseCreated) Json() map[string]any {
	return map[string]any{
		"response": p.Response,
	}
}

func (p *ServerEventParamResponseCreated) ResponseId() string {
	if v, ok := p.Response["id"].(string); ok {
		return v
	}
	return ""
}

// response.done
type ServerEventParamResponseDone struct {
	Response map[string]any
}

func (p *ServerEventParamResponseDone) New(m map[string]any) error {
	if v, ok := m["response"].(map[string]any); ok {
		p.Response = v
	} else {
		return errors.New("missing response")
	}
	return nil
}

func (p *ServerEventParamResponseDone) Json() map[string]any {
	return map[string]any{
		"response": p.Response,
	}
}

// response.output_item.added
type ServerEventParamResponseOutputItemAdded struct {
	ResponseId  string
	OutputIndex int
	Item        map[string]any
}

func (p *ServerEventParamResponseOutputItemAdded) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := m["item"].(map[string]any); ok {
		p.Item = v
	} else {
		return errors.New("missing item")
	}
	return nil
}

func (p *ServerEventParamResponseOutputItemAdded) Json() map[string]any {
	return map[string]any{
		"response_id":  p.ResponseId,
		"output_index": p.OutputIndex,
		"item":         p.Item,
	}
}

func (p *ServerEventParamResponseOutputItemAdded) ItemId() string {
	if v, ok := p.Item["id"].(string); ok {
		return v
	}
	return ""
}

// response.output_item.done
type ServerEventParamResponseOutputItemDone struct {
	ResponseId  string
	OutputIndex int
	Item        map[string]any
}

func (p *ServerEventParamResponseOutputItemDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := m["item"].(map[string]any); ok {
		p.Item = v
	} else {
		return errors.New("missing item")
	}
	return nil
}

func (p *ServerEventParamResponseOutputItemDone) Json() map[string]any {
	return map[string]any{
		"response_id":  p.ResponseId,
		"output_index": p.OutputIndex,
		"item":         p.Item,
	}
}

// response.content_part.added
type ServerEventParamResponseContentPartAdded struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Part         map[string]any
}

func (p *ServerEventParamResponseContentPartAdded) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["part"].(map[string]any); ok {
		p.Part = v
	} else {
		return errors.New("missing part")
	}
	return nil
}

func (p *ServerEventParamResponseContentPartAdded) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"part":          p.Part,
	}
}

// response.content_part.done
type ServerEventParamResponseContentPartDone struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Part         map[string]any
}

func (p *ServerEventParamResponseContentPartDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["part"].(map[string]any); ok {
		p.Part = v
	} else {
		return errors.New("missing part")
	}
	return nil
}

func (p *ServerEventParamResponseContentPartDone) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"part":          p.Part,
	}
}

// response.text.delta
type ServerEventParamResponseTextDelta struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Delta        string
}

func (p *ServerEventParamResponseTextDelta) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["delta"].(string); ok {
		p.Delta = v
	} else {
		return errors.New("missing delta")
	}
	return nil
}

func (p *ServerEventParamResponseTextDelta) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"delta":         p.Delta,
	}
}

// response.text.done
type ServerEventParamResponseTextDone struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Text         string
}

func (p *ServerEventParamResponseTextDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["text"].(string); ok {
		p.Text = v
	} else {
		return errors.New("missing text")
	}
	return nil
}

func (p *ServerEventParamResponseTextDone) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"text":          p.Text,
	}
}

// response.audio_transcript.delta
type ServerEventParamResponseAudioTranscriptDelta struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Delta        string
}

func (p *ServerEventParamResponseAudioTranscriptDelta) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["delta"].(string); ok {
		p.Delta = v
	} else {
		return errors.New("missing delta")
	}
	return nil
}

func (p *ServerEventParamResponseAudioTranscriptDelta) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"delta":         p.Delta,
	}
}

// response.audio_transcript.done
type ServerEventParamResponseAudioTranscriptDone struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Transcript   string
}

func (p *ServerEventParamResponseAudioTranscriptDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["transcript"].(string); ok {
		p.Transcript = v
	} else {
		return errors.New("missing transcript")
	}
	return nil
}

func (p *ServerEventParamResponseAudioTranscriptDone) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"transcript":    p.Transcript,
	}
}

// response.audio.delta
type ServerEventParamResponseAudioDelta struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
	Delta        string
}

func (p *ServerEventParamResponseAudioDelta) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	if v, ok := m["delta"].(string); ok {
		p.Delta = v
	} else {
		return errors.New("missing delta")
	}
	return nil
}

func (p *ServerEventParamResponseAudioDelta) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
		"delta":         p.Delta,
	}
}

// Bytes decodes the base64 PCM16 payload.
func (p *ServerEventParamResponseAudioDelta) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Delta)
}

// response.audio.done
type ServerEventParamResponseAudioDone struct {
	ResponseId   string
	ItemId       string
	OutputIndex  int
	ContentIndex int
}

func (p *ServerEventParamResponseAudioDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := asInt(m["content_index"]); ok {
		p.ContentIndex = v
	} else {
		return errors.New("missing content_index")
	}
	return nil
}

func (p *ServerEventParamResponseAudioDone) Json() map[string]any {
	return map[string]any{
		"response_id":   p.ResponseId,
		"item_id":       p.ItemId,
		"output_index":  p.OutputIndex,
		"content_index": p.ContentIndex,
	}
}

// response.function_call_arguments.delta
type ServerEventParamResponseFunctionCallArgumentsDelta struct {
	ResponseId  string
	ItemId      string
	OutputIndex int
	CallId      string
	Delta       string
}

func (p *ServerEventParamResponseFunctionCallArgumentsDelta) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := m["call_id"].(string); ok {
		p.CallId = v
	} else {
		return errors.New("missing call_id")
	}
	if v, ok := m["delta"].(string); ok {
		p.Delta = v
	} else {
		return errors.New("missing delta")
	}
	return nil
}

func (p *ServerEventParamResponseFunctionCallArgumentsDelta) Json() map[string]any {
	return map[string]any{
		"response_id":  p.ResponseId,
		"item_id":      p.ItemId,
		"output_index": p.OutputIndex,
		"call_id":      p.CallId,
		"delta":        p.Delta,
	}
}

// response.function_call_arguments.done
type ServerEventParamResponseFunctionCallArgumentsDone struct {
	ResponseId  string
	ItemId      string
	OutputIndex int
	CallId      string
	Name        string
	Arguments   string
}

func (p *ServerEventParamResponseFunctionCallArgumentsDone) New(m map[string]any) error {
	if v, ok := m["response_id"].(string); ok {
		p.ResponseId = v
	} else {
		return errors.New("missing response_id")
	}
	if v, ok := m["item_id"].(string); ok {
		p.ItemId = v
	} else {
		return errors.New("missing item_id")
	}
	if v, ok := asInt(m["output_index"]); ok {
		p.OutputIndex = v
	} else {
		return errors.New("missing output_index")
	}
	if v, ok := m["call_id"].(string); ok {
		p.CallId = v
	} else {
		return errors.New("missing call_id")
	}
	if v, ok := m["name"].(string); ok {
		p.Name = v
	} else {
		return errors.New("missing name")
	}
	if v, ok := m["arguments"].(string); ok {
		p.Arguments = v
	} else {
		return errors.New("missing arguments")
	}
	return nil
}

func (p *ServerEventParamResponseFunctionCallArgumentsDone) Json() map[string]any {
	return map[string]any{
		"response_id":  p.ResponseId,
		"item_id":      p.ItemId,
		"output_index": p.OutputIndex,
		"call_id":      p.CallId,
		"name":         p.Name,
		"arguments":    p.Arguments,
	}
}

// ArgumentsMap parses the JSON arguments string.
func (p *ServerEventParamResponseFunctionCallArgumentsDone) ArgumentsMap() (map[string]any, error) {
	if p.Arguments == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := sonic.Unmarshal([]byte(p.Arguments), &args); err != nil {
		return nil, fmt.Errorf("parsing function call arguments: %w", err)
	}
	return args, nil
}

// rate_limits.updated
type ServerEventParamRateLimitsUpdated struct {
	RateLimits []map[string]any
}

func (p *ServerEventParamRateLimitsUpdated) New(m map[string]any) error {
	v, ok := m["rate_limits"]
	if !ok {
		return errors.New("missing rate_limits")
	}
	switch rr := v.(type) {
	case []any:
		res := make([]map[string]any, 0, len(rr))
		for _, r := range rr {
			if rm, ok := r.(map[string]any); ok {
				res = append(res, rm)
			} else {
				return errors.New("invalid element in rate_limits")
			}
		}
		p.RateLimits = res
	case []map[string]any:
		p.RateLimits = rr
	default:
		return errors.New("invalid rate_limits")
	}
	return nil
}

func (p *ServerEventParamRateLimitsUpdated) Json() map[string]any {
	return map[string]any{
		"rate_limits": p.RateLimits,
	}
}
