package testing

import (
	"context"
	"io"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/llm"
)

// MockStream replays a scripted sequence of stream responses. After the
// script drains it yields Err when set, io.EOF otherwise.
type MockStream struct {
	Events []ai.ChatCompletionStreamResponse
	Err    error

	pos    int
	Closed bool
}

func (m *MockStream) Recv() (ai.ChatCompletionStreamResponse, error) {
	if m.pos >= len(m.Events) {
		if m.Err != nil {
			return ai.ChatCompletionStreamResponse{}, m.Err
		}
		return ai.ChatCompletionStreamResponse{}, io.EOF
	}
	event := m.Events[m.pos]
	m.pos++
	return event, nil
}

func (m *MockStream) Close() error {
	m.Closed = true
	return nil
}

// MockCompleter hands out scripted streams in order, one per invocation.
type MockCompleter struct {
	Streams []*MockStream
	// OpenErr fails the next invocation before any stream is opened.
	OpenErr error

	Invocations int
	// Histories records the transcript snapshot of each invocation.
	Histories [][]ai.ChatCompletionMessage
}

func (m *MockCompleter) Stream(_ context.Context, history []ai.ChatCompletionMessage) (llm.Streamer, error) {
	m.Histories = append(m.Histories, history)
	if m.OpenErr != nil {
		err := m.OpenErr
		m.OpenErr = nil
		return nil, err
	}
	if m.Invocations >= len(m.Streams) {
		return &MockStream{}, nil
	}
	stream := m.Streams[m.Invocations]
	m.Invocations++
	return stream, nil
}

// TextEvent wraps an answer-text fragment as a stream response.
func TextEvent(content string) ai.ChatCompletionStreamResponse {
	return deltaEvent(ai.ChatCompletionStreamChoiceDelta{Content: content})
}

// ReasoningEvent wraps a reasoning fragment as a stream response.
func ReasoningEvent(content string) ai.ChatCompletionStreamResponse {
	return deltaEvent(ai.ChatCompletionStreamChoiceDelta{ReasoningContent: content})
}

// ToolCallEvent wraps one positional tool-call fragment as a stream
// response. Empty id/name/args pieces are legal; fragments concatenate.
func ToolCallEvent(index int, id, name, args string) ai.ChatCompletionStreamResponse {
	i := index
	return deltaEvent(ai.ChatCompletionStreamChoiceDelta{
		ToolCalls: []ai.ToolCall{
			{
				Index:    &i,
				ID:       id,
				Type:     ai.ToolTypeFunction,
				Function: ai.FunctionCall{Name: name, Arguments: args},
			},
		},
	})
}

func deltaEvent(delta ai.ChatCompletionStreamChoiceDelta) ai.ChatCompletionStreamResponse {
	return ai.ChatCompletionStreamResponse{
		Choices: []ai.ChatCompletionStreamChoice{
			{Delta: delta},
		},
	}
}
