package openresponses

import (
	"strings"
	"testing"

	"github.com/hemanth/llmux/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishReason(s string) *string { return &s }

// driveStream feeds a full chunk sequence through an Emitter and returns
// every event produced, in order: Open, each Feed, then Close.
func driveStream(e *Emitter, chunks []provider.ChatChunk) []StreamEvent {
	var events []StreamEvent
	events = append(events, e.Open()...)
	for _, c := range chunks {
		events = append(events, e.Feed(c)...)
	}
	events = append(events, e.Close()...)
	return events
}

func TestEmitter_SequenceNumbersStrictlyIncreasing(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "Hi"}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: " there"}, FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	for i, ev := range events {
		assert.Equal(t, i, ev.SequenceNumber)
	}
}

func TestEmitter_CreatedFirstCompletedLast(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "Hi"}, FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	require.NotEmpty(t, events)
	assert.Equal(t, EventResponseCreated, events[0].Type)
	assert.Equal(t, EventResponseCompleted, events[len(events)-1].Type)
}

func TestEmitter_EveryAddedHasMatchingDoneAtSameIndex(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{ID: "call_1", Function: provider.DeltaToolCallFunc{Name: "f"}}},
		}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{Function: provider.DeltaToolCallFunc{Arguments: `{"x":`}}},
		}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{Function: provider.DeltaToolCallFunc{Arguments: `1}`}}},
		}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "done"}}}},
		{Choices: []provider.ChunkChoice{{FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	added := map[int]bool{}
	done := map[int]bool{}
	for _, ev := range events {
		if ev.OutputIndex == nil {
			continue
		}
		switch ev.Type {
		case EventOutputItemAdded:
			added[*ev.OutputIndex] = true
		case EventOutputItemDone:
			done[*ev.OutputIndex] = true
		}
	}

	require.Len(t, added, 2)
	assert.Equal(t, added, done)

	// The function call and the message must have distinct indices, since
	// they were open concurrently — this is the §9 open-question fix.
	fcIndex, msgIndex := -1, -1
	for _, ev := range events {
		if ev.Type == EventOutputItemAdded && ev.Item != nil {
			if ev.Item.Type == ItemTypeFunctionCall {
				fcIndex = *ev.OutputIndex
			}
			if ev.Item.Type == ItemTypeMessage {
				msgIndex = *ev.OutputIndex
			}
		}
	}
	assert.NotEqual(t, fcIndex, msgIndex)
}

func TestEmitter_FunctionCallClosesBeforeMessage(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{ID: "call_1", Function: provider.DeltaToolCallFunc{Name: "f"}}},
		}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "done"}}}},
		{Choices: []provider.ChunkChoice{{FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	var doneTypes []string
	for _, ev := range events {
		if ev.Type == EventOutputItemDone {
			doneTypes = append(doneTypes, ev.Item.Type)
		}
	}
	require.Len(t, doneTypes, 2)
	assert.Equal(t, ItemTypeFunctionCall, doneTypes[0])
	assert.Equal(t, ItemTypeMessage, doneTypes[1])
}

func TestEmitter_ConcatenatedDeltasEqualFinalText(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "Hel"}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "lo, "}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "world"}, FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	var deltas []string
	var doneText string
	for _, ev := range events {
		if ev.Type == EventOutputTextDelta {
			deltas = append(deltas, ev.Delta)
		}
		if ev.Type == EventOutputTextDone {
			doneText = ev.Text
		}
	}

	assert.Equal(t, "Hello, world", strings.Join(deltas, ""))
	assert.Equal(t, "Hello, world", doneText)
}

func TestEmitter_ArgumentDeltasBetweenAddedAndDone(t *testing.T) {
	e := NewEmitter("m", "groq")
	chunks := []provider.ChatChunk{
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{ID: "call_1", Function: provider.DeltaToolCallFunc{Name: "f"}}},
		}}}},
		{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{
			ToolCalls: []provider.DeltaToolCall{{Function: provider.DeltaToolCallFunc{Arguments: `{"x":1}`}}},
		}}}},
		{Choices: []provider.ChunkChoice{{FinishReason: finishReason("stop")}}},
	}
	events := driveStream(e, chunks)

	var order []string
	for _, ev := range events {
		switch ev.Type {
		case EventOutputItemAdded, EventFunctionCallArgumentsDelta, EventFunctionCallArgumentsDone, EventOutputItemDone:
			order = append(order, ev.Type)
		}
	}
	require.Equal(t, []string{
		EventOutputItemAdded,
		EventFunctionCallArgumentsDelta,
		EventFunctionCallArgumentsDone,
		EventOutputItemDone,
	}, order)
}

func TestEmitter_FailEmitsResponseFailedAsTerminalEvent(t *testing.T) {
	e := NewEmitter("m", "groq")
	events := e.Open()
	events = append(events, e.Feed(provider.ChatChunk{Choices: []provider.ChunkChoice{{Delta: provider.ChunkDelta{Content: "partial"}}}})...)
	events = append(events, e.Fail("upstream dropped connection")...)

	last := events[len(events)-1]
	assert.Equal(t, EventResponseFailed, last.Type)
	require.NotNil(t, last.Response)
	assert.Equal(t, StatusFailed, last.Response.Status)
}
