// Package provider implements the Provider Client (spec.md §4.4): a single
// descriptor-driven HTTP call against one OpenAI-compatible upstream,
// either unary or as a server-sent-event stream.
package provider

import "encoding/json"

// Message is one message in a chat conversation, matching the OpenAI
// Chat-Completions wire format.
type Message struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is an OpenAI-style function-tool declaration.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolChoice mirrors OpenAI's tool_choice union: a bare string ("auto",
// "none", "required") or {"type":"function","function":{"name":...}}.
type ToolChoice struct {
	Mode     string // "auto", "none", "required", or "" when Function is set
	Function string // function name, when a specific function is forced
}

// MarshalJSON renders the bare-string or object form depending on which
// field is populated.
func (t ToolChoice) MarshalJSON() ([]byte, error) {
	if t.Function != "" {
		return json.Marshal(struct {
			Type     string `json:"type"`
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		}{
			Type: "function",
			Function: struct {
				Name string `json:"name"`
			}{Name: t.Function},
		})
	}
	return json.Marshal(t.Mode)
}

// ChatRequest is the internal, normalized Chat-Completions request. Model,
// Messages etc. are the wire fields forwarded upstream; Provider and Cache
// are gateway extensions that MUST be stripped before forwarding per
// spec.md §3.
type ChatRequest struct {
	Model            string      `json:"model"`
	Messages         []Message   `json:"messages"`
	Temperature      *float64    `json:"temperature,omitempty"`
	TopP             *float64    `json:"top_p,omitempty"`
	MaxTokens        *int        `json:"max_tokens,omitempty"`
	Stream           bool        `json:"stream,omitempty"`
	Stop             []string    `json:"stop,omitempty"`
	PresencePenalty  *float64    `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64    `json:"frequency_penalty,omitempty"`
	Tools            []Tool      `json:"tools,omitempty"`
	ToolChoice       *ToolChoice `json:"tool_choice,omitempty"`

	// Gateway extensions — stripped before the request crosses the wire
	// to an upstream provider.
	Provider string `json:"provider,omitempty"`
	Cache    *bool  `json:"cache,omitempty"`
}

// CacheEnabled reports whether this specific request allows caching,
// defaulting to true when unset.
func (r *ChatRequest) CacheEnabled() bool {
	return r.Cache == nil || *r.Cache
}

// ForUpstream returns a copy of the request with gateway extensions
// stripped and Stream forced to match the requested mode, ready to
// marshal and send to an OpenAI-compatible upstream.
func (r ChatRequest) ForUpstream(model string, stream bool) ChatRequest {
	up := r
	up.Model = model
	up.Stream = stream
	up.Provider = ""
	up.Cache = nil
	return up
}

// Usage holds token accounting, normalized across providers.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is one generated completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// ChatResponse is the unary OpenAI-compatible response, extended with the
// gateway's Provider/Cached fields.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`

	Provider string `json:"provider,omitempty"`
	Cached   bool   `json:"cached,omitempty"`
}

// DeltaToolCall is a streaming fragment of a tool call: the model may
// emit the name on the first fragment and dribble `arguments` across
// subsequent ones, all sharing the same `index`.
type DeltaToolCall struct {
	Index    int                `json:"index"`
	ID       string             `json:"id,omitempty"`
	Type     string             `json:"type,omitempty"`
	Function DeltaToolCallFunc  `json:"function,omitempty"`
}

type DeltaToolCallFunc struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChunkDelta is the partial message carried by one streaming frame.
type ChunkDelta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []DeltaToolCall `json:"tool_calls,omitempty"`
}

// ChunkChoice is one choice within a streaming frame.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason,omitempty"`
}

// ChatChunk is one frame of a Chat-Completions SSE stream.
type ChatChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}
