package openresponses

import (
	"time"

	"github.com/google/uuid"
	"github.com/hemanth/llmux/internal/provider"
)

// FromChatResponse translates a unary provider.ChatResponse into an
// OpenResponses Response, per spec.md §4.6.2: for each choice, emit one
// function_call OutputItem per tool call (in order, before the message),
// then one message OutputItem when the choice has non-empty text content.
func FromChatResponse(resp provider.ChatResponse) Response {
	var output []OutputItem

	for _, choice := range resp.Choices {
		for _, tc := range choice.Message.ToolCalls {
			output = append(output, OutputItem{
				Type:      ItemTypeFunctionCall,
				ID:        "fc_" + uuid.NewString(),
				Name:      tc.Function.Name,
				CallID:    tc.ID,
				Arguments: tc.Function.Arguments,
				Status:    StatusCompleted,
			})
		}

		if choice.Message.Content != nil && *choice.Message.Content != "" {
			output = append(output, OutputItem{
				Type:   ItemTypeMessage,
				ID:     "msg_" + uuid.NewString(),
				Role:   "assistant",
				Status: StatusCompleted,
				Content: []OutputContentPart{
					{Type: ContentTypeOutputText, Text: *choice.Message.Content},
				},
			})
		}
	}

	return Response{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		Status:    StatusCompleted,
		Output:    output,
		Usage:     usageFromChat(resp.Usage),
		Model:     resp.Model,
		CreatedAt: time.Now().Unix(),
		Provider:  resp.Provider,
		Cached:    resp.Cached,
	}
}

// usageFromChat renames Chat-Completions' usage fields to OpenResponses'
// per spec.md §4.6.2.
func usageFromChat(u provider.Usage) *Usage {
	return &Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
}
