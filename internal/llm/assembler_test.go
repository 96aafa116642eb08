package llm_test

import (
	"errors"
	"strings"
	"testing"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/llm"
	mocktest "github.com/joelfuller2016/deepseek-engineer/internal/testing"
)

func consume(t *testing.T, events []ai.ChatCompletionStreamResponse) ai.ChatCompletionMessage {
	t.Helper()
	msg, err := llm.NewAssembler(nil, nil).Consume(&mocktest.MockStream{Events: events})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return msg
}

func TestAssembler_ContentOnly(t *testing.T) {
	msg := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.TextEvent("Hello"),
		mocktest.TextEvent(", "),
		mocktest.TextEvent("world"),
	})

	if msg.Role != ai.ChatMessageRoleAssistant {
		t.Errorf("wrong role %q", msg.Role)
	}
	if msg.Content != "Hello, world" {
		t.Errorf("content = %q", msg.Content)
	}
	if len(msg.ToolCalls) != 0 {
		t.Errorf("unexpected tool calls: %v", msg.ToolCalls)
	}
}

func TestAssembler_SingleToolCall(t *testing.T) {
	msg := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "call_abc", "read_file", ""),
		mocktest.ToolCallEvent(0, "", "", `{"file_pa`),
		mocktest.ToolCallEvent(0, "", "", `th":"main.go"}`),
	})

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	tc := msg.ToolCalls[0]
	if tc.ID != "call_abc" || tc.Function.Name != "read_file" {
		t.Errorf("call = %+v", tc)
	}
	if tc.Function.Arguments != `{"file_path":"main.go"}` {
		t.Errorf("arguments = %q", tc.Function.Arguments)
	}
}

func TestAssembler_InterleavedOutOfOrderFragments(t *testing.T) {
	// Fragments for index 1 arrive before index 0 completes; assembly must
	// produce the same result as a one-shot delivery
	interleaved := []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "call_0", "read_file", `{"file_`),
		mocktest.ToolCallEvent(1, "call_1", "create_file", `{"file_path":"b",`),
		mocktest.ToolCallEvent(0, "", "", `path":"a"}`),
		mocktest.ToolCallEvent(1, "", "", `"content":"x"}`),
	}
	oneShot := []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "call_0", "read_file", `{"file_path":"a"}`),
		mocktest.ToolCallEvent(1, "call_1", "create_file", `{"file_path":"b","content":"x"}`),
	}

	got := consume(t, interleaved)
	want := consume(t, oneShot)

	if len(got.ToolCalls) != len(want.ToolCalls) {
		t.Fatalf("call counts differ: %d vs %d", len(got.ToolCalls), len(want.ToolCalls))
	}
	for i := range got.ToolCalls {
		if got.ToolCalls[i] != want.ToolCalls[i] {
			t.Errorf("call %d differs:\ninterleaved: %+v\none-shot:    %+v", i, got.ToolCalls[i], want.ToolCalls[i])
		}
	}
}

func TestAssembler_StrayTextWithToolCalls(t *testing.T) {
	msg := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.TextEvent("Let me read that file."),
		mocktest.ToolCallEvent(0, "call_1", "read_file", `{"file_path":"x"}`),
	})

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	if msg.Content != "" {
		t.Errorf("tool-call turn must carry empty content, got %q", msg.Content)
	}
}

func TestAssembler_MissingIDGenerated(t *testing.T) {
	first := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "", "read_file", `{"file_path":"x"}`),
	})
	second := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "", "read_file", `{"file_path":"x"}`),
	})

	id := first.ToolCalls[0].ID
	if id == "" {
		t.Fatal("missing ID was not synthesized")
	}
	if !strings.HasPrefix(id, "call_0_") {
		t.Errorf("synthesized ID has unexpected shape: %q", id)
	}
	if id == second.ToolCalls[0].ID {
		t.Error("synthesized IDs must be unique across turns")
	}
}

func TestAssembler_IncompleteCallDropped(t *testing.T) {
	// Arguments with no name ever arriving: not executable
	msg := consume(t, []ai.ChatCompletionStreamResponse{
		mocktest.ToolCallEvent(0, "call_1", "read_file", `{"file_path":"x"}`),
		mocktest.ToolCallEvent(2, "call_3", "", `{"orphan":true}`),
	})

	if len(msg.ToolCalls) != 1 {
		t.Errorf("incomplete builder should be dropped, got %d calls", len(msg.ToolCalls))
	}
}

func TestAssembler_MidStreamErrorAbortsTurn(t *testing.T) {
	stream := &mocktest.MockStream{
		Events: []ai.ChatCompletionStreamResponse{
			mocktest.TextEvent("partial answer"),
			mocktest.ToolCallEvent(0, "call_1", "read_file", `{"file_`),
		},
		Err: errors.New("connection reset"),
	}

	msg, err := llm.NewAssembler(nil, nil).Consume(stream)
	if !errors.Is(err, core.ErrTransport) {
		t.Fatalf("expected transport fault, got %v", err)
	}
	if msg.Content != "" || len(msg.ToolCalls) != 0 {
		t.Errorf("aborted turn must produce no message, got %+v", msg)
	}
}

func TestAssembler_ReasoningForwardedNotStored(t *testing.T) {
	var reasoning, content strings.Builder
	a := llm.NewAssembler(
		func(s string) { reasoning.WriteString(s) },
		func(s string) { content.WriteString(s) },
	)

	msg, err := a.Consume(&mocktest.MockStream{Events: []ai.ChatCompletionStreamResponse{
		mocktest.ReasoningEvent("thinking about it"),
		mocktest.TextEvent("the answer"),
	}})
	if err != nil {
		t.Fatal(err)
	}

	if reasoning.String() != "thinking about it" {
		t.Errorf("reasoning callback got %q", reasoning.String())
	}
	if content.String() != "the answer" {
		t.Errorf("content callback got %q", content.String())
	}
	if msg.Content != "the answer" {
		t.Errorf("reasoning leaked into message content: %q", msg.Content)
	}
}

func TestAssembler_EmptyStream(t *testing.T) {
	msg := consume(t, nil)
	if msg.Content != "" || len(msg.ToolCalls) != 0 {
		t.Errorf("empty stream should produce an empty assistant message, got %+v", msg)
	}
}

func TestAssembler_RejectsReuse(t *testing.T) {
	a := llm.NewAssembler(nil, nil)
	if _, err := a.Consume(&mocktest.MockStream{}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Consume(&mocktest.MockStream{}); err == nil {
		t.Error("second consume on the same assembler should fail")
	}
}
