package llm

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
)

type assemblerState int

const (
	stateIdle assemblerState = iota
	stateStreaming
	stateFinalized
)

// toolCallBuilder accumulates the positionally-indexed fragments of one
// tool call. Name and argument pieces concatenate in arrival order; the ID
// is overwritten when supplied. A builder converts to an immutable
// ai.ToolCall only at stream end, so a partially-built call can never be
// executed.
type toolCallBuilder struct {
	id   string
	name strings.Builder
	args strings.Builder
}

func (b *toolCallBuilder) add(delta ai.ToolCall) {
	if delta.ID != "" {
		b.id = delta.ID
	}
	b.name.WriteString(delta.Function.Name)
	b.args.WriteString(delta.Function.Arguments)
}

func (b *toolCallBuilder) complete() bool {
	return b.name.Len() > 0
}

func (b *toolCallBuilder) build(index int) ai.ToolCall {
	id := b.id
	if id == "" {
		// The stream never supplied one; synthesize a unique identifier
		id = fmt.Sprintf("call_%d_%s", index, uuid.NewString())
	}
	return ai.ToolCall{
		ID:   id,
		Type: ai.ToolTypeFunction,
		Function: ai.FunctionCall{
			Name:      b.name.String(),
			Arguments: b.args.String(),
		},
	}
}

// Assembler reconstructs one complete assistant turn from an incremental
// event stream: answer text accumulates into a buffer, reasoning text is
// forwarded for display only, and tool-call fragments collect into sparse
// index-keyed builders that may arrive interleaved and out of order.
type Assembler struct {
	state       assemblerState
	content     strings.Builder
	builders    []*toolCallBuilder
	onReasoning func(string)
	onContent   func(string)
}

// NewAssembler returns an assembler for a single model turn. The callbacks
// receive reasoning and answer fragments as they arrive; either may be nil.
func NewAssembler(onReasoning, onContent func(string)) *Assembler {
	return &Assembler{
		onReasoning: onReasoning,
		onContent:   onContent,
	}
}

// Consume drains the stream to completion and returns the assembled
// assistant message. A transport error mid-stream aborts the turn: the
// error is returned and no message is produced, so incomplete tool-call
// fragments never reach the transcript.
func (a *Assembler) Consume(stream Streamer) (ai.ChatCompletionMessage, error) {
	if a.state != stateIdle {
		return ai.ChatCompletionMessage{}, errors.New("assembler already consumed a stream")
	}
	a.state = stateStreaming

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return a.finalize(), nil
		}
		if err != nil {
			a.state = stateFinalized
			return ai.ChatCompletionMessage{}, fmt.Errorf("%w: stream ended abnormally: %v", core.ErrTransport, err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		a.ingest(response.Choices[0].Delta)
	}
}

func (a *Assembler) ingest(delta ai.ChatCompletionStreamChoiceDelta) {
	if delta.ReasoningContent != "" && a.onReasoning != nil {
		// Display-only; never stored as conversation content
		a.onReasoning(delta.ReasoningContent)
	}
	if delta.Content != "" {
		a.content.WriteString(delta.Content)
		if a.onContent != nil {
			a.onContent(delta.Content)
		}
	}
	for _, fragment := range delta.ToolCalls {
		if fragment.Index == nil {
			continue
		}
		a.slot(*fragment.Index).add(fragment)
	}
}

// slot returns the builder for the given position, growing the sparse array
// as needed. Fragments for a later index may arrive before earlier indices
// complete; slots are extended, never overwritten.
func (a *Assembler) slot(index int) *toolCallBuilder {
	for len(a.builders) <= index {
		a.builders = append(a.builders, nil)
	}
	if a.builders[index] == nil {
		a.builders[index] = &toolCallBuilder{}
	}
	return a.builders[index]
}

// finalize freezes the turn. A turn carries either final text only, or tool
// calls with content forced empty — even if stray text fragments were also
// received.
func (a *Assembler) finalize() ai.ChatCompletionMessage {
	a.state = stateFinalized

	var calls []ai.ToolCall
	for i, builder := range a.builders {
		if builder == nil || !builder.complete() {
			continue
		}
		calls = append(calls, builder.build(i))
	}

	if len(calls) > 0 {
		return ai.ChatCompletionMessage{
			Role:      ai.ChatMessageRoleAssistant,
			ToolCalls: calls,
		}
	}
	return ai.ChatCompletionMessage{
		Role:    ai.ChatMessageRoleAssistant,
		Content: a.content.String(),
	}
}
