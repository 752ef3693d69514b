package openresponses

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hemanth/llmux/internal/provider"
)

// Emitter is the streaming state machine of spec.md §4.6.3: it consumes
// provider.ChatChunk frames one at a time and produces the OpenResponses
// StreamEvent sequence, holding every invariant in spec.md §8 (properties
// 2-4) regardless of how its caller drives it. It is pull-based: the
// caller calls Open once, Feed once per upstream chunk, and then either
// Close once at stream end or Fail once on upstream failure — each call
// returns the events to
// emit right now, so backpressure from the downstream writer propagates
// naturally (spec.md §9, "async stream translation").
type Emitter struct {
	seq        int
	responseID string
	model      string
	provider   string

	nextIndex int

	messageOpen    bool
	messageIndex   int
	messageID      string
	accumulatedText strings.Builder

	functionCallOpen    bool
	functionCallIndex   int
	functionCallID      string
	functionCallCallID  string
	functionCallName    string
	accumulatedArguments strings.Builder

	finishedItems []OutputItem
}

// NewEmitter builds an Emitter for one streaming /v1/responses call.
func NewEmitter(model, providerName string) *Emitter {
	return &Emitter{
		responseID: "resp_" + uuid.NewString(),
		model:      model,
		provider:   providerName,
	}
}

func (e *Emitter) nextSeq() int {
	s := e.seq
	e.seq++
	return s
}

func (e *Emitter) placeholderResponse(status string) *Response {
	return &Response{
		ID:     e.responseID,
		Object: "response",
		Status: status,
		Output: []OutputItem{},
		Model:  e.model,
	}
}

// Open emits response.created then response.in_progress, per spec.md
// §4.6.3 step 1. It MUST be called exactly once, before any Feed call.
func (e *Emitter) Open() []StreamEvent {
	return []StreamEvent{
		{Type: EventResponseCreated, SequenceNumber: e.nextSeq(), Response: e.placeholderResponse(StatusInProgress)},
		{Type: EventResponseInProgress, SequenceNumber: e.nextSeq(), Response: e.placeholderResponse(StatusInProgress)},
	}
}

// Feed processes one upstream ChatChunk and returns the events it
// produces, per spec.md §4.6.3 step 2. output_index is assigned to an
// item the moment it opens and held fixed across that item's
// added/delta/done events; the shared counter advances immediately so a
// function call and a message open concurrently never collide — see
// DESIGN.md's resolution of the §9 output-index open question.
func (e *Emitter) Feed(chunk provider.ChatChunk) []StreamEvent {
	var events []StreamEvent

	for _, choice := range chunk.Choices {
		events = append(events, e.feedDelta(choice.Delta)...)
		if choice.FinishReason != nil {
			events = append(events, e.closeOpenItems()...)
		}
	}

	return events
}

func (e *Emitter) feedDelta(delta provider.ChunkDelta) []StreamEvent {
	var events []StreamEvent

	for _, tc := range delta.ToolCalls {
		if tc.Function.Name != "" && !e.functionCallOpen {
			e.functionCallOpen = true
			e.functionCallIndex = e.nextIndex
			e.nextIndex++
			e.functionCallID = "fc_" + uuid.NewString()
			e.functionCallName = tc.Function.Name
			e.functionCallCallID = tc.ID
			if e.functionCallCallID == "" {
				e.functionCallCallID = "call_" + uuid.NewString()
			}

			idx := e.functionCallIndex
			events = append(events, StreamEvent{
				Type:           EventOutputItemAdded,
				SequenceNumber: e.nextSeq(),
				OutputIndex:    &idx,
				Item: &OutputItem{
					Type:   ItemTypeFunctionCall,
					ID:     e.functionCallID,
					Name:   e.functionCallName,
					CallID: e.functionCallCallID,
					Status: StatusInProgress,
				},
			})
		}

		if tc.Function.Arguments != "" && e.functionCallOpen {
			e.accumulatedArguments.WriteString(tc.Function.Arguments)
			idx := e.functionCallIndex
			events = append(events, StreamEvent{
				Type:           EventFunctionCallArgumentsDelta,
				SequenceNumber: e.nextSeq(),
				OutputIndex:    &idx,
				Delta:          tc.Function.Arguments,
			})
		}
	}

	if delta.Content != "" {
		if !e.messageOpen {
			e.messageOpen = true
			e.messageIndex = e.nextIndex
			e.nextIndex++
			e.messageID = "msg_" + uuid.NewString()

			idx := e.messageIndex
			zero := 0
			events = append(events,
				StreamEvent{
					Type:           EventOutputItemAdded,
					SequenceNumber: e.nextSeq(),
					OutputIndex:    &idx,
					Item: &OutputItem{
						Type:   ItemTypeMessage,
						ID:     e.messageID,
						Role:   "assistant",
						Status: StatusInProgress,
					},
				},
				StreamEvent{
					Type:           EventContentPartAdded,
					SequenceNumber: e.nextSeq(),
					OutputIndex:    &idx,
					ContentIndex:   &zero,
					Part:           &OutputContentPart{Type: ContentTypeOutputText, Text: ""},
				},
			)
		}

		e.accumulatedText.WriteString(delta.Content)
		idx := e.messageIndex
		events = append(events, StreamEvent{
			Type:           EventOutputTextDelta,
			SequenceNumber: e.nextSeq(),
			OutputIndex:    &idx,
			Delta:          delta.Content,
		})
	}

	return events
}

// closeOpenItems emits the done events for whichever of (function call,
// message) are currently open, per spec.md §4.6.3's finish_reason branch:
// the function call closes first, then the message.
func (e *Emitter) closeOpenItems() []StreamEvent {
	var events []StreamEvent

	if e.functionCallOpen {
		idx := e.functionCallIndex
		args := e.accumulatedArguments.String()
		item := OutputItem{
			Type:      ItemTypeFunctionCall,
			ID:        e.functionCallID,
			Name:      e.functionCallName,
			CallID:    e.functionCallCallID,
			Arguments: args,
			Status:    StatusCompleted,
		}
		events = append(events,
			StreamEvent{Type: EventFunctionCallArgumentsDone, SequenceNumber: e.nextSeq(), OutputIndex: &idx, Arguments: args},
			StreamEvent{Type: EventOutputItemDone, SequenceNumber: e.nextSeq(), OutputIndex: &idx, Item: &item},
		)
		e.finishedItems = append(e.finishedItems, item)
		e.functionCallOpen = false
	}

	if e.messageOpen {
		idx := e.messageIndex
		zero := 0
		text := e.accumulatedText.String()
		item := OutputItem{
			Type:   ItemTypeMessage,
			ID:     e.messageID,
			Role:   "assistant",
			Status: StatusCompleted,
			Content: []OutputContentPart{
				{Type: ContentTypeOutputText, Text: text},
			},
		}
		events = append(events,
			StreamEvent{Type: EventOutputTextDone, SequenceNumber: e.nextSeq(), OutputIndex: &idx, Text: text},
			StreamEvent{Type: EventContentPartDone, SequenceNumber: e.nextSeq(), OutputIndex: &idx, ContentIndex: &zero, Part: &OutputContentPart{Type: ContentTypeOutputText, Text: text}},
			StreamEvent{Type: EventOutputItemDone, SequenceNumber: e.nextSeq(), OutputIndex: &idx, Item: &item},
		)
		e.finishedItems = append(e.finishedItems, item)
		e.messageOpen = false
	}

	return events
}

// Close emits the terminal response.completed event, per spec.md §4.6.3
// step 3, assembling Output from every item Feed closed. Any item still
// open at Close time (an upstream that ended without a finish_reason) is
// force-closed first, preserving the "every open item is closed before
// response.completed" invariant.
func (e *Emitter) Close() []StreamEvent {
	events := e.closeOpenItems()

	resp := e.placeholderResponse(StatusCompleted)
	resp.Output = e.finishedItems
	events = append(events, StreamEvent{Type: EventResponseCompleted, SequenceNumber: e.nextSeq(), Response: resp})
	return events
}

// Fail emits response.failed as the terminal event, for stream-error
// cases (spec.md §7's Stream-error kind).
func (e *Emitter) Fail(message string) []StreamEvent {
	events := e.closeOpenItems()

	resp := e.placeholderResponse(StatusFailed)
	resp.Output = e.finishedItems
	resp.Error = &Error{Code: "stream_error", Message: message}
	events = append(events, StreamEvent{Type: EventResponseFailed, SequenceNumber: e.nextSeq(), Response: resp})
	return events
}
