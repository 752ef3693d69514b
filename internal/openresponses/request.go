package openresponses

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hemanth/llmux/internal/gatewayerr"
	"github.com/hemanth/llmux/internal/provider"
)

// NormalizeInput parses a ResponseRequest's raw `input` field into a slice
// of InputItem, per spec.md §4.6.1: a bare string becomes a single user
// message with one input_text part; an array is preserved as-is (each
// item's own UnmarshalJSON already expands string-shorthand content).
func NormalizeInput(raw json.RawMessage) ([]InputItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []InputItem{{
			Type:    ItemTypeMessage,
			Role:    "user",
			Content: []InputContentPart{{Type: ContentTypeInputText, Text: asString}},
		}}, nil
	}

	var items []InputItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, gatewayerr.Validation("invalid_input", "input must be a string or an array of input items")
	}
	return items, nil
}

// ToChatRequest translates a ResponseRequest (with its input already
// normalized into items) into a provider.ChatRequest, per spec.md §4.6.1.
func ToChatRequest(req ResponseRequest, items []InputItem) (provider.ChatRequest, error) {
	messages := make([]provider.Message, 0, len(items))

	if req.Instructions != "" {
		messages = append(messages, provider.Message{Role: "system", Content: &req.Instructions})
	}

	for _, item := range items {
		switch item.Type {
		case ItemTypeMessage, "":
			text := concatenateInputText(item.Content)
			messages = append(messages, provider.Message{Role: item.Role, Content: &text})

		case ItemTypeFunctionCallOut:
			output := item.Output
			messages = append(messages, provider.Message{
				Role:       "tool",
				Content:    &output,
				ToolCallID: item.CallID,
			})

		default:
			return provider.ChatRequest{}, gatewayerr.Validation("invalid_input", fmt.Sprintf("unsupported input item type %q", item.Type))
		}
	}

	out := provider.ChatRequest{
		Model:            req.Model,
		Messages:         messages,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxOutputTokens,
		Stream:           req.Stream,
		Provider:         req.Provider,
		Cache:            req.Cache,
	}

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, provider.Tool{
			Type: "function",
			Function: provider.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	if req.ToolChoice != nil {
		switch req.ToolChoice.Mode {
		case "auto", "none", "required":
			out.ToolChoice = &provider.ToolChoice{Mode: req.ToolChoice.Mode}
		case "function", "":
			if req.ToolChoice.Name != "" {
				out.ToolChoice = &provider.ToolChoice{Function: req.ToolChoice.Name}
			}
		}
	}

	return out, nil
}

// concatenateInputText joins every input_text part's Text in order,
// ignoring non-text parts (images) per spec.md §4.6.1.
func concatenateInputText(parts []InputContentPart) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Type == ContentTypeInputText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
