// Package openresponses implements the OpenResponses <-> Chat-Completions
// adapter of spec.md §4.6: request translation, unary response
// translation, and the SSE streaming state machine.
package openresponses

import "encoding/json"

// Input/output item and content-part "type" discriminators, as they
// appear on the wire.
const (
	ItemTypeMessage           = "message"
	ItemTypeFunctionCall      = "function_call"
	ItemTypeFunctionCallOut   = "function_call_output"
	ContentTypeInputText      = "input_text"
	ContentTypeInputImage     = "input_image"
	ContentTypeOutputText     = "output_text"
	ContentTypeRefusal        = "refusal"
)

// Status values for OutputItem and Response.
const (
	StatusInProgress = "in_progress"
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// InputContentPart is one part of a message InputItem's content array.
// Exactly one of Text (for input_text) or ImageURL (for input_image) is
// set, selected by Type.
type InputContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// InputItem is one element of an OpenResponses request's `input` array:
// either a message or the output of a previously requested function call.
// Type discriminates which fields apply.
type InputItem struct {
	Type string `json:"type"`

	// message fields
	Role    string             `json:"role,omitempty"`
	Content []InputContentPart `json:"content,omitempty"`

	// function_call_output fields
	CallID string `json:"call_id,omitempty"`
	Output string `json:"output,omitempty"`
}

// UnmarshalJSON accepts the bare-string content shorthand for message
// items (`{"role":"user","content":"hi"}`) in addition to the full
// content-part array form.
func (i *InputItem) UnmarshalJSON(data []byte) error {
	type rawItem struct {
		Type    string          `json:"type"`
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
		CallID  string          `json:"call_id"`
		Output  string          `json:"output"`
	}
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.Type = raw.Type
	if i.Type == "" {
		i.Type = ItemTypeMessage
	}
	i.Role = raw.Role
	i.CallID = raw.CallID
	i.Output = raw.Output

	if len(raw.Content) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		i.Content = []InputContentPart{{Type: ContentTypeInputText, Text: asString}}
		return nil
	}

	var asParts []InputContentPart
	if err := json.Unmarshal(raw.Content, &asParts); err != nil {
		return err
	}
	i.Content = asParts
	return nil
}

// OutputContentPart is one part of a message OutputItem's content array.
type OutputContentPart struct {
	Type        string        `json:"type"`
	Text        string        `json:"text,omitempty"`
	Annotations []interface{} `json:"annotations,omitempty"`
}

// OutputItem is one element of a Response's `output` array: either an
// assistant message or a function call the model requested.
type OutputItem struct {
	Type string `json:"type"`

	// message fields
	ID      string              `json:"id,omitempty"`
	Role    string              `json:"role,omitempty"`
	Status  string              `json:"status,omitempty"`
	Content []OutputContentPart `json:"content,omitempty"`

	// function_call fields
	Name      string `json:"name,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Error is the OpenResponses error body, mirroring spec.md §7's envelope
// shape for a failed Response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the OpenResponses top-level response object.
type Response struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"`
	Status    string       `json:"status"`
	Output    []OutputItem `json:"output"`
	Error     *Error       `json:"error,omitempty"`
	Usage     *Usage       `json:"usage,omitempty"`
	Model     string       `json:"model"`
	CreatedAt int64        `json:"created_at"`
	Provider  string       `json:"provider,omitempty"`
	Cached    bool         `json:"cached,omitempty"`
}

// Usage mirrors Chat-Completions' Usage under OpenResponses' field names.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ResponseRequest is the inbound /v1/responses request body.
type ResponseRequest struct {
	Model              string          `json:"model"`
	Input              json.RawMessage `json:"input"`
	PreviousResponseID string          `json:"previous_response_id,omitempty"`
	Instructions       string          `json:"instructions,omitempty"`
	Temperature        *float64        `json:"temperature,omitempty"`
	TopP               *float64        `json:"top_p,omitempty"`
	MaxOutputTokens    *int            `json:"max_output_tokens,omitempty"`
	Tools              []RequestTool   `json:"tools,omitempty"`
	ToolChoice         *ToolChoice     `json:"tool_choice,omitempty"`
	Stream             bool            `json:"stream,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	Cache              *bool           `json:"cache,omitempty"`
}

// RequestTool is an OpenResponses-shaped function tool declaration.
type RequestTool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolChoice mirrors OpenResponses' tool_choice union: a bare mode string,
// or {"type":"function","name":...}.
type ToolChoice struct {
	Mode string `json:"-"`
	Name string `json:"-"`
}

// UnmarshalJSON accepts either the bare-string or object form.
func (t *ToolChoice) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		t.Mode = asString
		return nil
	}

	var asObject struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return err
	}
	t.Mode = asObject.Type
	t.Name = asObject.Name
	return nil
}

// StreamEvent is one emitted OpenResponses SSE event. Type discriminates
// which fields are meaningful; SequenceNumber is always present.
type StreamEvent struct {
	Type            string      `json:"type"`
	SequenceNumber  int         `json:"sequence_number"`
	Response        *Response   `json:"response,omitempty"`
	OutputIndex     *int        `json:"output_index,omitempty"`
	Item            *OutputItem `json:"item,omitempty"`
	ContentIndex    *int        `json:"content_index,omitempty"`
	Part            *OutputContentPart `json:"part,omitempty"`
	Delta           string      `json:"delta,omitempty"`
	Text            string      `json:"text,omitempty"`
	Arguments       string      `json:"arguments,omitempty"`
}

// Event type constants for the streaming state machine of spec.md §4.6.3.
const (
	EventResponseCreated             = "response.created"
	EventResponseInProgress          = "response.in_progress"
	EventResponseCompleted           = "response.completed"
	EventResponseFailed              = "response.failed"
	EventOutputItemAdded             = "response.output_item.added"
	EventOutputItemDone              = "response.output_item.done"
	EventContentPartAdded            = "response.content_part.added"
	EventContentPartDone             = "response.content_part.done"
	EventOutputTextDelta             = "response.output_text.delta"
	EventOutputTextDone              = "response.output_text.done"
	EventFunctionCallArgumentsDelta  = "response.function_call_arguments.delta"
	EventFunctionCallArgumentsDone   = "response.function_call_arguments.done"
)
